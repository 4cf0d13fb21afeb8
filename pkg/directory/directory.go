// Package directory is the boundary to the external client directory. The
// engine reads subject records through it and writes nothing except tags.
package directory

import (
	"context"
	"errors"

	"github.com/lumera-app/lumera/pkg/models"
)

// ErrClientNotFound indicates the directory has no client for the given ID.
var ErrClientNotFound = errors.New("client not found")

// Directory resolves subject records by ID and in bulk for segmentation.
type Directory interface {
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]*models.Client, error)
	// BirthdaysOn returns clients whose birthday falls on the given
	// month/day, for time-based triggers.
	BirthdaysOn(ctx context.Context, month, day int) ([]*models.Client, error)

	AddTag(ctx context.Context, clientID, tag string) error
	RemoveTag(ctx context.Context, clientID, tag string) error
}
