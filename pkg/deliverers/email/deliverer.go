// Package email delivers templated email through a Mailer collaborator.
package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/protocol"
	"github.com/lumera-app/lumera/pkg/template"
)

type Deliverer struct {
	mailer protocol.Mailer
}

var ErrNoRecipient = errors.New("client has no email address")

func NewDeliverer(mailer protocol.Mailer) *Deliverer {
	return &Deliverer{mailer: mailer}
}

func (d *Deliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	subject, _ := action.Config["subject"].(string)
	content, _ := action.Config["content"].(string)

	if client.Email == "" {
		return nil, fmt.Errorf("%w: client %s", ErrNoRecipient, client.ID)
	}

	renderedSubject := template.RenderForClient(subject, client, firing)
	renderedContent := template.RenderForClient(content, client, firing)

	logger.Info("Delivering email",
		"action_id", action.ID,
		"client_id", client.ID)

	if err := d.mailer.SendEmail(ctx, client.Email, renderedSubject, renderedContent); err != nil {
		return nil, fmt.Errorf("email delivery failed: %w", err)
	}

	return map[string]any{
		"recipient": client.Email,
		"subject":   renderedSubject,
	}, nil
}
