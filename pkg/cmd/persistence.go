// Package cmd provides common initialization functions for the lumera
// binaries.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumera-app/lumera/pkg/persistence"
	"github.com/lumera-app/lumera/pkg/persistence/file"
	"github.com/lumera-app/lumera/pkg/persistence/postgresql"
)

// NewPersistence picks the persistence backend from the database URL scheme:
// postgres for production, a file tree for everything else.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		persist, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres persistence: %w", err)
		}

		return persist, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
