// Package config provides configuration file loading for the client
// directory seed.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lumera-app/lumera/pkg/models"
)

// DirectoryConfigFile is the structure of the clients.yaml seed file used by
// the in-memory directory in development and demos. Production deployments
// back the directory with the real client database instead.
type DirectoryConfigFile struct {
	Clients []ClientConfig `yaml:"clients"`
}

// ClientConfig is one client entry in the seed file.
type ClientConfig struct {
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Email         string            `yaml:"email"`
	Phone         string            `yaml:"phone"`
	ClientType    string            `yaml:"client_type"`
	TotalSpent    float64           `yaml:"total_spent"`
	VisitCount    int               `yaml:"visit_count"`
	LastVisitAt   string            `yaml:"last_visit_at"`
	LastService   string            `yaml:"last_service"`
	Tags          []string          `yaml:"tags"`
	Birthday      string            `yaml:"birthday"`
	LoyaltyPoints int               `yaml:"loyalty_points"`
	Custom        map[string]string `yaml:"custom"`
}

// LoadDirectoryConfig loads the client seed from a YAML file.
func LoadDirectoryConfig(filepath string) ([]*models.Client, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	var configFile DirectoryConfigFile
	if err := yaml.Unmarshal(data, &configFile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	clients := make([]*models.Client, 0, len(configFile.Clients))

	for i, entry := range configFile.Clients {
		client, err := entry.toClient()
		if err != nil {
			return nil, fmt.Errorf("client entry %d (%s): %w", i, entry.ID, err)
		}

		clients = append(clients, client)
	}

	return clients, nil
}

func (c ClientConfig) toClient() (*models.Client, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("client id is required")
	}

	client := &models.Client{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		ClientType:    c.ClientType,
		TotalSpent:    c.TotalSpent,
		VisitCount:    c.VisitCount,
		LastService:   c.LastService,
		Tags:          c.Tags,
		LoyaltyPoints: c.LoyaltyPoints,
		Custom:        c.Custom,
	}

	if c.LastVisitAt != "" {
		t, err := time.Parse(time.RFC3339, c.LastVisitAt)
		if err != nil {
			return nil, fmt.Errorf("invalid last_visit_at: %w", err)
		}

		client.LastVisitAt = &t
	}

	if c.Birthday != "" {
		t, err := time.Parse("2006-01-02", c.Birthday)
		if err != nil {
			return nil, fmt.Errorf("invalid birthday: %w", err)
		}

		client.Birthday = &t
	}

	return client, nil
}
