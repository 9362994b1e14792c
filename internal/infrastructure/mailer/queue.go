package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"agromarket/pkg/logx"
)

// Queue ставит письма в очередь; доставка выполняется Handler в сервере asynq.
type Queue struct {
	client   *asynq.Client
	queue    string
	maxRetry int
	timeout  time.Duration
}

func NewQueue(client *asynq.Client) *Queue {
	return &Queue{
		client:   client,
		queue:    QueueName,
		maxRetry: 5,
		timeout:  30 * time.Second,
	}
}

func (q *Queue) EnqueueEmail(ctx context.Context, to, subject, htmlBody string) error {
	task, err := NewSendEmailTask(EmailPayload{To: to, Subject: subject, HTMLBody: htmlBody})
	if err != nil {
		return err
	}

	info, err := q.client.EnqueueContext(ctx, task,
		asynq.Queue(q.queue),
		asynq.MaxRetry(q.maxRetry),
		asynq.Timeout(q.timeout),
	)
	if err != nil {
		return fmt.Errorf("asynqClient.EnqueueContext: %w", err)
	}

	logger(ctx).Debug("email enqueued",
		slog.String(logx.FieldTaskType, TypeSendEmail),
		slog.String(logx.FieldMessageID, info.ID),
	)

	return nil
}
