package webhook

import "github.com/lumera-app/lumera/pkg/protocol"

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) ID() string {
	return "webhook"
}

func (f *Factory) Create(config map[string]any) (protocol.Deliverer, error) {
	return NewDeliverer(config), nil
}
