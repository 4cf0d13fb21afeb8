// Package notification raises internal operator alerts.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/protocol"
	"github.com/lumera-app/lumera/pkg/template"
)

type Deliverer struct {
	notifier protocol.Notifier
}

func NewDeliverer(notifier protocol.Notifier) *Deliverer {
	return &Deliverer{notifier: notifier}
}

func (d *Deliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	title, _ := action.Config["title"].(string)
	body, _ := action.Config["body"].(string)

	renderedTitle := template.RenderForClient(title, client, firing)
	renderedBody := template.RenderForClient(body, client, firing)

	logger.Info("Raising notification",
		"action_id", action.ID,
		"client_id", client.ID,
		"title", renderedTitle)

	if err := d.notifier.Notify(ctx, renderedTitle, renderedBody); err != nil {
		return nil, fmt.Errorf("notification failed: %w", err)
	}

	return map[string]any{"title": renderedTitle}, nil
}
