package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
	"github.com/oksasatya/bonsai-buddy/pkg/mailer"
	mailtpl "github.com/oksasatya/bonsai-buddy/pkg/mailer/templates"
)

type ContactService struct {
	*core
}

type ContactInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Message   string `json:"message" validate:"required,max=5000"`
}

// Submit emails a contact-form message to the team, with replies going to
// the sender. It returns the delivery id.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (string, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validate(in); err != nil {
		return "", err
	}
	if s.Mail == nil || s.Contact.To == "" {
		return "", apperror.Upstream(nil, "contact email is not configured")
	}
	sender := in.FirstName + " " + in.LastName
	data := mailtpl.NewContactMessageData(s.Branding, s.Contact.To, sender, in.Email, in.Message)
	subject, text, html, err := mailtpl.Render(mailtpl.ContactMessage, data)
	if err != nil {
		return "", err
	}
	id, err := s.Mail.Send(ctx, mailer.Message{
		From:    s.Contact.From,
		To:      s.Contact.To,
		ReplyTo: in.Email,
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
	if err != nil {
		return "", apperror.Upstream(err, "failed to send message")
	}
	s.Logger.WithFields(logrus.Fields{"id": id, "reply_to": in.Email}).Info("contact message sent")
	return id, nil
}
