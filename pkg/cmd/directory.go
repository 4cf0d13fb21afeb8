package cmd

import (
	"fmt"

	"github.com/lumera-app/lumera/pkg/config"
	"github.com/lumera-app/lumera/pkg/directory"
)

// NewDirectory builds the client directory. With a seed file path the
// in-memory directory is preloaded from YAML; without one it starts empty.
func NewDirectory(seedPath string) (directory.Directory, error) {
	if seedPath == "" {
		return directory.NewMemoryDirectory(), nil
	}

	clients, err := config.LoadDirectoryConfig(seedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load directory seed: %w", err)
	}

	return directory.NewMemoryDirectory(clients...), nil
}
