// Package protocol defines the contracts between the engine and its
// pluggable collaborators: action deliverers and triggers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
)

// Deliverer hands one action's external effect to a delivery collaborator.
// The engine never sees transport details (API keys, provider endpoints);
// those belong to the collaborator behind the factory.
type Deliverer interface {
	Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error)
}

// DelivererFactory builds a deliverer for one action type.
type DelivererFactory interface {
	Create(config map[string]any) (Deliverer, error)
	ID() string
}

// Messenger sends templated content over an outbound channel (whatsapp, sms,
// email). Implementations own provider credentials and endpoints.
type Messenger interface {
	Send(ctx context.Context, channel, recipient, content string) error
}

// Mailer sends templated email. Implementations own provider credentials.
type Mailer interface {
	SendEmail(ctx context.Context, recipient, subject, content string) error
}

// Notifier raises an internal operator alert.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// TagWriter mutates a client's tag set in the client directory.
type TagWriter interface {
	AddTag(ctx context.Context, clientID, tag string) error
	RemoveTag(ctx context.Context, clientID, tag string) error
}
