package mailer

import (
	"context"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// Mailgun wraps Mailgun client configuration.
type Mailgun struct {
	Domain string
	APIKey string
	Sender string
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Domain: domain, APIKey: apiKey, Sender: sender}
}

// Send delivers msg via Mailgun and returns the provider message id.
// An empty From falls back to the configured sender.
func (m *Mailgun) Send(ctx context.Context, msg Message) (string, error) {
	client := mg.NewMailgun(m.Domain, m.APIKey)
	from := msg.From
	if from == "" {
		from = m.Sender
	}
	out := client.NewMessage(from, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		out.SetHtml(msg.HTML)
	}
	if msg.ReplyTo != "" {
		out.SetReplyTo(msg.ReplyTo)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, id, err := client.Send(c, out)
	return id, err
}
