package cmd

import (
	"log/slog"

	"github.com/lumera-app/lumera/pkg/deliverers/email"
	"github.com/lumera-app/lumera/pkg/deliverers/message"
	"github.com/lumera-app/lumera/pkg/deliverers/notification"
	"github.com/lumera-app/lumera/pkg/deliverers/tag"
	"github.com/lumera-app/lumera/pkg/deliverers/webhook"
	"github.com/lumera-app/lumera/pkg/directory"
	"github.com/lumera-app/lumera/pkg/registry"
	"github.com/lumera-app/lumera/pkg/transports/logging"
)

// NewRegistry builds the deliverer registry with the native deliverers. The
// message, email and notification deliverers run on logging stand-ins until
// real provider transports are configured; tag delivery writes through the
// client directory.
func NewRegistry(log *slog.Logger, dir directory.Directory) *registry.Registry {
	reg := registry.NewRegistry(log)

	reg.RegisterDeliverer(message.NewFactory(logging.NewMessenger(log)))
	reg.RegisterDeliverer(email.NewFactory(logging.NewMailer(log)))
	reg.RegisterDeliverer(notification.NewFactory(logging.NewNotifier(log)))
	reg.RegisterDeliverer(tag.NewFactory(dir))
	reg.RegisterDeliverer(webhook.NewFactory())

	return reg
}
