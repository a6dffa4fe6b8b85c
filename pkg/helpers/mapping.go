package helpers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	mailtpl "github.com/oksasatya/bonsai-buddy/pkg/mailer/templates"
)

var ErrEmptyEmail = errors.New("email job needs a template or a subject with text/html")

func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Template == "" {
		return
	}
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
	if v, ok := job.Data["Type"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Type"] = job.Template
	}
}

// ComposeEmail turns a queued job into a sendable message, rendering its
// template when one is named.
func ComposeEmail(job mailer.EmailJob) (mailer.Message, error) {
	EnsureRecipientAndEmail(&job)
	msg := job.Message()
	if job.Template != "" {
		s, t, h, err := mailtpl.Render(strings.ToLower(job.Template), job.Data)
		if err != nil {
			return mailer.Message{}, err
		}
		msg.Subject, msg.Text, msg.HTML = s, t, h
	}
	if msg.To == "" || msg.Subject == "" || (msg.Text == "" && msg.HTML == "") {
		return mailer.Message{}, ErrEmptyEmail
	}
	return msg, nil
}
