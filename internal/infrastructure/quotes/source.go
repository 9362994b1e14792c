package quotes

import (
	"context"

	"agromarket/internal/domain/entity"
)

// Source поставщик котировок. Неизвестные тикеры в ответе отсутствуют.
type Source interface {
	GetLatestQuotes(ctx context.Context, tickers []string) (map[string]entity.Quote, error)
	GetHistory(ctx context.Context, ticker, interval, rng string) ([]entity.HistoryPoint, error)
}
