package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lumera-app/lumera/pkg/models"
)

// MemoryDirectory is an in-memory Directory for development and tests.
type MemoryDirectory struct {
	mu      sync.RWMutex
	clients map[string]*models.Client
}

func NewMemoryDirectory(clients ...*models.Client) *MemoryDirectory {
	d := &MemoryDirectory{clients: make(map[string]*models.Client, len(clients))}
	for _, c := range clients {
		d.clients[c.ID] = cloneClient(c)
	}

	return d
}

func (d *MemoryDirectory) Put(client *models.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.clients[client.ID] = cloneClient(client)
}

func (d *MemoryDirectory) GetByID(_ context.Context, id string) (*models.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	client, ok := d.clients[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, id)
	}

	return cloneClient(client), nil
}

func (d *MemoryDirectory) List(_ context.Context) ([]*models.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	clients := make([]*models.Client, 0, len(d.clients))
	for _, c := range d.clients {
		clients = append(clients, cloneClient(c))
	}

	return clients, nil
}

func (d *MemoryDirectory) BirthdaysOn(_ context.Context, month, day int) ([]*models.Client, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var clients []*models.Client

	for _, c := range d.clients {
		if c.Birthday == nil {
			continue
		}

		if int(c.Birthday.Month()) == month && c.Birthday.Day() == day {
			clients = append(clients, cloneClient(c))
		}
	}

	return clients, nil
}

func (d *MemoryDirectory) AddTag(_ context.Context, clientID, tag string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	client, ok := d.clients[clientID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	if !client.HasTag(tag) {
		client.Tags = append(client.Tags, tag)
	}

	return nil
}

func (d *MemoryDirectory) RemoveTag(_ context.Context, clientID, tag string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	client, ok := d.clients[clientID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrClientNotFound, clientID)
	}

	tags := client.Tags[:0]

	for _, t := range client.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}

	client.Tags = tags

	return nil
}

func cloneClient(c *models.Client) *models.Client {
	clone := *c
	clone.Tags = append([]string(nil), c.Tags...)

	if c.Custom != nil {
		clone.Custom = make(map[string]string, len(c.Custom))
		for k, v := range c.Custom {
			clone.Custom[k] = v
		}
	}

	return &clone
}
