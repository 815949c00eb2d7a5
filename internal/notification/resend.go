package notification

import (
	"context"
	"errors"

	"github.com/resend/resend-go/v2"
)

var ErrSendEmail = errors.New("failed to send notification email")

type resendSender struct {
	client *resend.Client
	from   string
	to     string
}

// NewResendSender sends notifications through the Resend API.
func NewResendSender(apiKey string, from string, to string) Sender {
	return &resendSender{client: resend.NewClient(apiKey), from: from, to: to}
}

func (s *resendSender) Send(ctx context.Context, message Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: message.Subject,
		Html:    message.HTML,
	}

	if _, errSend := s.client.Emails.SendWithContext(ctx, params); errSend != nil {
		return errors.Join(errSend, ErrSendEmail)
	}

	return nil
}
