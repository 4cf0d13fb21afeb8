package email

import "github.com/lumera-app/lumera/pkg/protocol"

type Factory struct {
	mailer protocol.Mailer
}

func NewFactory(mailer protocol.Mailer) *Factory {
	return &Factory{mailer: mailer}
}

func (f *Factory) ID() string {
	return "email"
}

func (f *Factory) Create(_ map[string]any) (protocol.Deliverer, error) {
	return NewDeliverer(f.mailer), nil
}
