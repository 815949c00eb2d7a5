package notification

import (
	"context"
	"log/slog"
)

type discardSender struct{}

// NewDiscardSender logs instead of sending, used when email is disabled.
func NewDiscardSender() Sender {
	return discardSender{}
}

func (discardSender) Send(_ context.Context, message Message) error {
	slog.Info("Email notifications disabled, discarding message",
		slog.String("subject", message.Subject))

	return nil
}
