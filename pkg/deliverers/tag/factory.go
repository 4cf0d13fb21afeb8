package tag

import "github.com/lumera-app/lumera/pkg/protocol"

type Factory struct {
	writer protocol.TagWriter
}

func NewFactory(writer protocol.TagWriter) *Factory {
	return &Factory{writer: writer}
}

func (f *Factory) ID() string {
	return "tag"
}

func (f *Factory) Create(_ map[string]any) (protocol.Deliverer, error) {
	return NewDeliverer(f.writer), nil
}
