package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"agromarket/internal/metrics"
	"agromarket/pkg/logx"
)

type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type Handler struct {
	sender Sender
}

func NewHandler(sender Sender) *Handler {
	return &Handler{sender: sender}
}

// HandleSendEmail битый payload не повторяется; ошибка отправки уходит в retry asynq.
func (h *Handler) HandleSendEmail(ctx context.Context, task *asynq.Task) error {
	var p EmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal: %v: %w", err, asynq.SkipRetry)
	}

	if p.To == "" {
		return fmt.Errorf("empty recipient: %w", asynq.SkipRetry)
	}

	if err := h.sender.Send(ctx, p.To, p.Subject, p.HTMLBody); err != nil {
		metrics.NotificationFailures.WithLabelValues("smtp").Inc()
		return fmt.Errorf("sender.Send: %w", err)
	}

	logger(ctx).Info("email sent", slog.String("subject", p.Subject))

	return nil
}

// LogSender пишет письма в лог, когда SMTP не настроен.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, _ string) error {
	logger(ctx).Info("email delivery skipped, smtp is not configured",
		slog.String("to", logx.MaskEmail(to)),
		slog.String("subject", subject),
	)

	return nil
}
