// Package notify доставляет уведомления пользователю в личную группу и на почту.
package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/value"
	"agromarket/internal/metrics"
	"agromarket/pkg/logx"
)

const (
	userCacheTTL     = 10 * time.Minute
	userCacheCleanup = 30 * time.Minute
)

type Publisher interface {
	Publish(group string, event entity.Event) int
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type MailQueue interface {
	EnqueueEmail(ctx context.Context, to, subject, htmlBody string) error
}

// Notifier ошибки доставки только логирует: уведомление никогда не откатывает изменение состояния.
type Notifier struct {
	publisher Publisher
	users     UserRepository
	mail      MailQueue
	contacts  *cache.Cache
}

func New(publisher Publisher, users UserRepository) *Notifier {
	return &Notifier{
		publisher: publisher,
		users:     users,
		contacts:  cache.New(userCacheTTL, userCacheCleanup),
	}
}

// WithMail включает отправку писем. Без очереди уведомления идут только в push-канал.
func (n *Notifier) WithMail(mail MailQueue) *Notifier {
	n.mail = mail
	return n
}

// Push отправляет текст в личную группу пользователя.
func (n *Notifier) Push(ctx context.Context, userID int64, text string) {
	delivered := n.publisher.Publish(value.UserGroup(userID), entity.NewAlertEvent(text))

	logger(ctx).Debug("user notified",
		slog.Int64(logx.FieldUserID, userID),
		slog.Int("delivered", delivered),
	)
}

// NotifyUser отправляет push и, если настроена почта, письмо.
func (n *Notifier) NotifyUser(ctx context.Context, userID int64, subject, text string) {
	n.Push(ctx, userID, text)

	if n.mail == nil {
		return
	}

	user, err := n.contact(ctx, userID)
	if err != nil {
		metrics.NotificationFailures.WithLabelValues("email").Inc()
		logger(ctx).Error("failed to load user contact", slog.Int64(logx.FieldUserID, userID), logx.Error(err))

		return
	}

	if user.Email == "" {
		return
	}

	if err := n.mail.EnqueueEmail(ctx, user.Email, subject, emailBody(user.FullName, text)); err != nil {
		metrics.NotificationFailures.WithLabelValues("email").Inc()
		logger(ctx).Error("failed to enqueue email", slog.Int64(logx.FieldUserID, userID), logx.Error(err))
	}
}

func (n *Notifier) contact(ctx context.Context, userID int64) (*entity.User, error) {
	key := strconv.FormatInt(userID, 10)

	if cached, ok := n.contacts.Get(key); ok {
		if user, ok := cached.(*entity.User); ok {
			return user, nil
		}
	}

	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("users.GetByID: %w", err)
	}

	n.contacts.SetDefault(key, user)

	return user, nil
}

func emailBody(name, text string) string {
	if name == "" {
		name = "trader"
	}

	return fmt.Sprintf(
		"<html><body><p>Hello, %s!</p><p>%s</p></body></html>",
		html.EscapeString(name),
		html.EscapeString(text),
	)
}
