// Package logging provides stand-in delivery collaborators that log instead
// of calling a provider. Real transports (WhatsApp, SMS, email providers) are
// configured outside the engine; these keep development and tests offline.
package logging

import (
	"context"
	"log/slog"
)

type Messenger struct {
	logger *slog.Logger
}

func NewMessenger(logger *slog.Logger) *Messenger {
	return &Messenger{logger: logger.With("module", "logging_messenger")}
}

func (m *Messenger) Send(_ context.Context, channel, recipient, content string) error {
	m.logger.Info("Message delivered", "channel", channel, "recipient", recipient, "length", len(content))

	return nil
}

type Mailer struct {
	logger *slog.Logger
}

func NewMailer(logger *slog.Logger) *Mailer {
	return &Mailer{logger: logger.With("module", "logging_mailer")}
}

func (m *Mailer) SendEmail(_ context.Context, recipient, subject, _ string) error {
	m.logger.Info("Email delivered", "recipient", recipient, "subject", subject)

	return nil
}

type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger.With("module", "logging_notifier")}
}

func (n *Notifier) Notify(_ context.Context, title, body string) error {
	n.logger.Info("Notification raised", "title", title, "body", body)

	return nil
}
