// Package notification delivers admin facing email notifications.
package notification

import (
	"context"
	"fmt"
	"strings"
)

type Message struct {
	Subject string
	HTML    string
}

// Sender delivers a message to the configured admin address. Implementations must be
// safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// NewContactMessage formats a contact form submission for the notification inbox.
func NewContactMessage(name string, surname string, email string, phone string,
	description string, imageURLs []string,
) Message {
	var body strings.Builder

	body.WriteString("<h2>Nuovo messaggio dal sito</h2>")
	body.WriteString(fmt.Sprintf("<p><b>Nome:</b> %s %s</p>", name, surname))

	if email != "" {
		body.WriteString(fmt.Sprintf("<p><b>Email:</b> %s</p>", email))
	}

	if phone != "" {
		body.WriteString(fmt.Sprintf("<p><b>Telefono:</b> %s</p>", phone))
	}

	body.WriteString(fmt.Sprintf("<p>%s</p>", description))

	for _, imageURL := range imageURLs {
		body.WriteString(fmt.Sprintf(`<p><a href="%s">%s</a></p>`, imageURL, imageURL))
	}

	return Message{
		Subject: fmt.Sprintf("Nuovo messaggio da %s %s", name, surname),
		HTML:    body.String(),
	}
}
