package mailer

import "context"

// Sender delivers a Message and returns the provider or job id for it.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Message is one outgoing email. HTML is optional; Text is the fallback body.
type Message struct {
	From    string `json:"from,omitempty"`
	To      string `json:"to"`
	ReplyTo string `json:"reply_to,omitempty"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Subject with Text/HTML, or a Template with Data, must be set.
type EmailJob struct {
	ID       string         `json:"id"`
	From     string         `json:"from,omitempty"`
	To       string         `json:"to"`
	ReplyTo  string         `json:"reply_to,omitempty"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "forgot_password" or "contact_message"
	Data     map[string]any `json:"data,omitempty"`
}

// Message returns the job's literal content, ignoring any template.
func (j EmailJob) Message() Message {
	return Message{From: j.From, To: j.To, ReplyTo: j.ReplyTo, Subject: j.Subject, Text: j.Text, HTML: j.HTML}
}

var (
	_ Sender = (*Mailgun)(nil)
	_ Sender = (*QueuedSender)(nil)
)
