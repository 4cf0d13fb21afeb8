// Package message delivers templated chat messages (whatsapp, sms) through a
// Messenger collaborator.
package message

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
	messenger protocol.Messenger
}

var ErrNoRecipient = errors.New("client has no phone number")

func NewDeliverer(messenger protocol.Messenger) *Deliverer {
	return &Deliverer{messenger: messenger}
}

func (d *Deliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	channel, _ := action.Config["channel"].(string)
	content, _ := action.Config["content"].(string)

	if client.Phone == "" {
		return nil, fmt.Errorf("%w: client %s", ErrNoRecipient, client.ID)
	}

	rendered := template.RenderForClient(content, client, firing)

	logger.Info("Delivering message",
		"action_id", action.ID,
		"channel", channel,
		"client_id", client.ID)

	if err := d.messenger.Send(ctx, channel, client.Phone, rendered); err != nil {
		return nil, fmt.Errorf("message delivery failed: %w", err)
	}

	return map[string]any{
		"channel":   channel,
		"recipient": client.Phone,
		"length":    len(rendered),
	}, nil
}
