package mocks

import (
	"context"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/lumera-app/lumera/pkg/models"
	"github.com/lumera-app/lumera/pkg/protocol"
)

// MockDeliverer is a mock implementation of protocol.Deliverer.
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, action models.Action, client *models.Client, firing models.FiringContext, logger *slog.Logger) (map[string]any, error) {
	args := m.Called(ctx, action, client, firing, logger)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(map[string]any), args.Error(1)
}

// MockDelivererFactory is a mock implementation of protocol.DelivererFactory.
// FactoryID is returned by ID(); Create hands out the configured deliverer.
type MockDelivererFactory struct {
	mock.Mock

	FactoryID string
}

func (m *MockDelivererFactory) Create(config map[string]any) (protocol.Deliverer, error) {
	args := m.Called(config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(protocol.Deliverer), args.Error(1)
}

func (m *MockDelivererFactory) ID() string {
	return m.FactoryID
}
