package notification

import "github.com/lumera-app/lumera/pkg/protocol"

type Factory struct {
	notifier protocol.Notifier
}

func NewFactory(notifier protocol.Notifier) *Factory {
	return &Factory{notifier: notifier}
}

func (f *Factory) ID() string {
	return "notification"
}

func (f *Factory) Create(_ map[string]any) (protocol.Deliverer, error) {
	return NewDeliverer(f.notifier), nil
}
