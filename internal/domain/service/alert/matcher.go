// Package alert ведёт одноразовые ценовые оповещения пользователей.
package alert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"agromarket/internal/domain/entity"
	"agromarket/internal/metrics"
	"agromarket/pkg/logx"
)

// DefaultTriggerBand относительная окрестность целевой цены (0.5%).
var DefaultTriggerBand = decimal.RequireFromString("0.005") //nolint:gochecknoglobals

type MatcherRepository interface {
	ListActiveByTicker(ctx context.Context, ticker string) ([]entity.Alert, error)
	// DeactivateBatch условно деактивирует оповещения одной транзакцией
	// и возвращает идентификаторы, которые действительно были переключены.
	DeactivateBatch(ctx context.Context, alerts []entity.Alert) ([]int64, error)
}

type UserNotifier interface {
	NotifyUser(ctx context.Context, userID int64, subject, text string)
}

type Matcher struct {
	repo     MatcherRepository
	notifier UserNotifier
	band     decimal.Decimal
}

func NewMatcher(repo MatcherRepository, notifier UserNotifier) *Matcher {
	return &Matcher{
		repo:     repo,
		notifier: notifier,
		band:     DefaultTriggerBand,
	}
}

func (m *Matcher) WithTriggerBand(band decimal.Decimal) *Matcher {
	if band.IsPositive() {
		m.band = band
	}

	return m
}

// Evaluate сравнивает котировку с активными оповещениями тикера.
// Сработавшие оповещения деактивируются одним коммитом; уведомляются только те,
// чья условная деактивация прошла. Возвращает число сработавших оповещений.
func (m *Matcher) Evaluate(ctx context.Context, quote entity.Quote) (int, error) {
	alerts, err := m.repo.ListActiveByTicker(ctx, quote.Ticker)
	if err != nil {
		return 0, fmt.Errorf("repo.ListActiveByTicker: %w", err)
	}

	fired := lo.Filter(alerts, func(a entity.Alert, _ int) bool {
		return a.Active && a.Matches(quote.Price, m.band)
	})
	if len(fired) == 0 {
		return 0, nil
	}

	deactivated, err := m.repo.DeactivateBatch(ctx, fired)
	if err != nil {
		return 0, fmt.Errorf("repo.DeactivateBatch: %w", err)
	}

	committed := lo.SliceToMap(deactivated, func(id int64) (int64, struct{}) { return id, struct{}{} })

	count := 0

	for _, a := range fired {
		if _, ok := committed[a.ID]; !ok {
			continue
		}

		count++

		logger(ctx).Info("price alert fired",
			slog.Int64(logx.FieldAlertID, a.ID),
			slog.Int64(logx.FieldUserID, a.OwnerID),
			slog.String(logx.FieldTicker, quote.Ticker),
			slog.String(logx.FieldPrice, quote.Price.String()),
		)

		m.notifier.NotifyUser(ctx, a.OwnerID, alertSubject(a), alertText(a, quote))
	}

	metrics.AlertsFired.Add(float64(count))

	return count, nil
}

func alertSubject(a entity.Alert) string {
	return fmt.Sprintf("Price alert: %s", displayName(a))
}

func alertText(a entity.Alert, q entity.Quote) string {
	return fmt.Sprintf("Alert: %s reached %s (target %s)", displayName(a), q.Price.String(), a.TargetPrice.String())
}

func displayName(a entity.Alert) string {
	if a.CommodityName != "" {
		return a.CommodityName
	}

	return a.Ticker
}
