// Package tag applies or removes a tag on the client through the directory.
package tag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/protocol"
)

type Deliverer struct {
	writer protocol.TagWriter
}

var ErrMissingTagName = errors.New("tag action requires tag_name")

func NewDeliverer(writer protocol.TagWriter) *Deliverer {
	return &Deliverer{writer: writer}
}

func (d *Deliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, _ models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	tagName, _ := action.Config["tag_name"].(string)
	if tagName == "" {
		return nil, ErrMissingTagName
	}

	remove, _ := action.Config["remove"].(bool)

	logger.Info("Updating client tags",
		"action_id", action.ID,
		"client_id", client.ID,
		"tag", tagName,
		"remove", remove)

	var err error
	if remove {
		err = d.writer.RemoveTag(ctx, client.ID, tagName)
	} else {
		err = d.writer.AddTag(ctx, client.ID, tagName)
	}

	if err != nil {
		return nil, fmt.Errorf("tag update failed: %w", err)
	}

	return map[string]any{
		"tag":     tagName,
		"removed": remove,
	}, nil
}
