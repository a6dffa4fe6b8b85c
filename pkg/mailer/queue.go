package mailer

import (
	"context"

	"github.com/google/uuid"
)

// Publisher puts a JSON body on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueuedSender hands messages to the email worker instead of calling the
// provider inline. The returned id is the job id.
type QueuedSender struct {
	Pub Publisher
}

func NewQueuedSender(pub Publisher) *QueuedSender { return &QueuedSender{Pub: pub} }

func (q *QueuedSender) Send(ctx context.Context, msg Message) (string, error) {
	return q.Enqueue(ctx, EmailJob{
		From:    msg.From,
		To:      msg.To,
		ReplyTo: msg.ReplyTo,
		Subject: msg.Subject,
		Text:    msg.Text,
		HTML:    msg.HTML,
	})
}

// Enqueue publishes job, assigning an id when it has none.
func (q *QueuedSender) Enqueue(ctx context.Context, job EmailJob) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if err := q.Pub.PublishJSON(ctx, job); err != nil {
		return "", err
	}
	return job.ID, nil
}
