package message

import "github.com/lumera-app/lumera/pkg/protocol"

type Factory struct {
	messenger protocol.Messenger
}

func NewFactory(messenger protocol.Messenger) *Factory {
	return &Factory{messenger: messenger}
}

func (f *Factory) ID() string {
	return "message"
}

func (f *Factory) Create(_ map[string]any) (protocol.Deliverer, error) {
	return NewDeliverer(f.messenger), nil
}
