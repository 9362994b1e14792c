package quotes

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
)

// DefaultSimulatedPrices стартовые цены случайного блуждания.
func DefaultSimulatedPrices() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"KC":     decimal.RequireFromString("185.50"),
		"C8":     decimal.RequireFromString("4350.00"),
		"USDBRL": decimal.RequireFromString("5.25"),
		"B3":     decimal.RequireFromString("310.00"),
	}
}

// Simulated поставщик котировок на случайном блуждании, для разработки без сети.
type Simulated struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	open    map[string]decimal.Decimal
	last    map[string]decimal.Decimal
	maxStep float64
	now     func() time.Time
}

// NewSimulated создаёт поставщик; maxStep максимальный относительный шаг за вызов (0.01 = 1%).
func NewSimulated(seed uint64, prices map[string]decimal.Decimal, maxStep float64) *Simulated {
	if prices == nil {
		prices = DefaultSimulatedPrices()
	}
	if maxStep <= 0 {
		maxStep = 0.01
	}

	open := make(map[string]decimal.Decimal, len(prices))
	last := make(map[string]decimal.Decimal, len(prices))
	for ticker, price := range prices {
		open[ticker] = price
		last[ticker] = price
	}

	return &Simulated{
		rnd:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		open:    open,
		last:    last,
		maxStep: maxStep,
		now:     time.Now,
	}
}

func (s *Simulated) GetLatestQuotes(_ context.Context, tickers []string) (map[string]entity.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	result := make(map[string]entity.Quote, len(tickers))

	for _, ticker := range tickers {
		price, ok := s.last[ticker]
		if !ok {
			continue
		}

		price = s.step(price)
		s.last[ticker] = price

		result[ticker] = entity.Quote{
			Ticker:        ticker,
			Price:         price,
			ChangePercent: price.Sub(s.open[ticker]).Div(s.open[ticker]).Mul(decimal.NewFromInt(100)).Round(2),
			Timestamp:     now,
		}
	}

	return result, nil
}

// GetHistory строит ряд назад от текущей цены: range трактуется как число точек через interval.
func (s *Simulated) GetHistory(_ context.Context, ticker, interval, rng string) ([]entity.HistoryPoint, error) {
	step, err := time.ParseDuration(interval)
	if err != nil || step <= 0 {
		step = time.Hour
	}

	window, err := parseRange(rng)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ValidationError, "invalid range")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.last[ticker]
	if !ok {
		return nil, domain.NewError(errcodes.InvalidTicker, fmt.Sprintf("unknown ticker %q", ticker))
	}

	count := int(window / step)
	if count < 1 {
		count = 1
	}

	points := make([]entity.HistoryPoint, count)
	at := s.now().UTC()

	for i := count - 1; i >= 0; i-- {
		points[i] = entity.HistoryPoint{Time: at.Unix(), Value: price}
		price = s.step(price)
		at = at.Add(-step)
	}

	return points, nil
}

func (s *Simulated) step(price decimal.Decimal) decimal.Decimal {
	delta := (s.rnd.Float64()*2 - 1) * s.maxStep
	next := price.Mul(decimal.NewFromFloat(1 + delta)).Round(4)

	if !next.IsPositive() {
		return price
	}

	return next
}

// parseRange понимает форматы Yahoo: 1d, 5d, 1mo, 3mo, 1y.
func parseRange(rng string) (time.Duration, error) {
	const day = 24 * time.Hour

	var (
		n    int
		unit string
	)

	if _, err := fmt.Sscanf(rng, "%d%s", &n, &unit); err != nil || n <= 0 {
		return 0, fmt.Errorf("parse range %q", rng)
	}

	switch unit {
	case "d":
		return time.Duration(n) * day, nil
	case "wk":
		return time.Duration(n) * 7 * day, nil
	case "mo":
		return time.Duration(n) * 30 * day, nil
	case "y":
		return time.Duration(n) * 365 * day, nil
	default:
		return 0, fmt.Errorf("unknown range unit %q", unit)
	}
}
