// Package registry holds the deliverer factories available to the engine.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/lumera-app/lumera/pkg/protocol"
)

type Registry struct {
	logger             *slog.Logger
	delivererFactories map[string]protocol.DelivererFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:             log,
		delivererFactories: make(map[string]protocol.DelivererFactory),
	}
}

func (r *Registry) RegisterDeliverer(factory protocol.DelivererFactory) {
	r.delivererFactories[factory.ID()] = factory
}

// CreateDeliverer builds the deliverer for an action type, or fails when the
// type has no registered delivery collaborator.
func (r *Registry) CreateDeliverer(actionType string, config map[string]any) (protocol.Deliverer, error) {
	factory, ok := r.delivererFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(config)
}

// HealthCheck reports whether the registry has deliverers registered.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.delivererFactories) == 0 {
		return "No deliverers registered", false
	}

	return fmt.Sprintf("%d deliverers registered", len(r.delivererFactories)), true
}

// DelivererIDs returns the registered action types.
func (r *Registry) DelivererIDs() []string {
	ids := make([]string, 0, len(r.delivererFactories))
	for id := range r.delivererFactories {
		ids = append(ids, id)
	}

	return ids
}
