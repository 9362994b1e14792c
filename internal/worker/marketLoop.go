package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/history"
	"agromarket/internal/domain/service/indicator"
	"agromarket/internal/domain/service/pricing"
	"agromarket/internal/domain/value"
	"agromarket/internal/metrics"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/logx"
)

const DefaultInterval = 15 * time.Second

type QuoteSource interface {
	GetLatestQuotes(ctx context.Context, tickers []string) (map[string]entity.Quote, error)
}

type Publisher interface {
	Publish(group string, event entity.Event) int
}

type AlertEvaluator interface {
	Evaluate(ctx context.Context, quote entity.Quote) (int, error)
}

type SettingsProvider interface {
	Get(ctx context.Context) (*entity.MarketSettings, error)
}

type QuoteStore interface {
	Store(ctx context.Context, quotes []entity.Quote) error
}

// LoopConfig параметры рыночного цикла. Пороги используются, когда настройки рынка пусты или недоступны.
type LoopConfig struct {
	Interval      time.Duration
	Tickers       []string
	RSIPeriod     int
	Overbought    decimal.Decimal
	Oversold      decimal.Decimal
	BagTicker     string
	DollarTicker  string
	BagAdjustment decimal.Decimal
}

// MarketLoop опрашивает поставщика котировок и раздаёт цены, индикаторы и оповещения.
type MarketLoop struct {
	source   QuoteSource
	history  *history.PriceHistory
	hub      Publisher
	alerts   AlertEvaluator
	settings SettingsProvider
	cache    QuoteStore

	opportunities chan<- entity.Opportunity

	cfg     LoopConfig
	tickers []string
	zones   map[string]indicator.Zone
	now     func() time.Time

	// Control fields
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewMarketLoop(
	source QuoteSource,
	prices *history.PriceHistory,
	hub Publisher,
	alerts AlertEvaluator,
	settings SettingsProvider,
	cfg LoopConfig,
) *MarketLoop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.RSIPeriod <= 0 {
		cfg.RSIPeriod = indicator.DefaultRSIPeriod
	}
	if !cfg.Overbought.IsPositive() {
		cfg.Overbought = decimal.NewFromInt(70)
	}
	if !cfg.Oversold.IsPositive() {
		cfg.Oversold = decimal.NewFromInt(30)
	}
	if cfg.BagTicker == "" {
		cfg.BagTicker = "KC"
	}
	if cfg.DollarTicker == "" {
		cfg.DollarTicker = "USDBRL"
	}
	if !cfg.BagAdjustment.IsPositive() {
		cfg.BagAdjustment = decimal.NewFromInt(1)
	}

	w := &MarketLoop{
		source:   source,
		history:  prices,
		hub:      hub,
		alerts:   alerts,
		settings: settings,
		cfg:      cfg,
		zones:    make(map[string]indicator.Zone),
		now:      time.Now,
	}
	w.SetTickers(cfg.Tickers)

	return w
}

// WithQuoteStore сохраняет последние котировки для HTTP API.
func (w *MarketLoop) WithQuoteStore(store QuoteStore) *MarketLoop {
	w.cache = store
	return w
}

// WithOpportunities дублирует сообщения о возможностях в канал (например, в бота операторов).
// Отправка неблокирующая: при заполненном канале сообщение для бота теряется.
func (w *MarketLoop) WithOpportunities(ch chan<- entity.Opportunity) *MarketLoop {
	w.opportunities = ch
	return w
}

func (w *MarketLoop) Interval() time.Duration {
	return w.cfg.Interval
}

func (w *MarketLoop) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return errors.New("market loop is already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("market loop stopped with error", logx.Error(err))
		}
	}()

	return nil
}

func (w *MarketLoop) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning возвращает текущий статус
func (w *MarketLoop) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isRunning
}

// Run выполняет первый такт сразу, затем по интервалу, до отмены контекста.
func (w *MarketLoop) Run(ctx context.Context) error {
	logger(ctx).Info("market loop started",
		slog.Duration("interval", w.cfg.Interval),
		slog.Any("tickers", w.Tickers()),
	)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			logger(ctx).Info("market loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick один проход цикла. Ошибки не выходят наружу: они логируются и учитываются в метриках.
func (w *MarketLoop) Tick(ctx context.Context) {
	tickers := w.Tickers()
	if len(tickers) == 0 {
		metrics.Ticks.WithLabelValues("empty").Inc()
		return
	}

	settings, overbought, oversold := w.loadSettings(ctx)

	quotes, err := w.source.GetLatestQuotes(ctx, tickers)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		metrics.Ticks.WithLabelValues("upstream_error").Inc()
		logger(ctx).Error("quote source unavailable",
			slog.String("code", string(errcodes.UpstreamUnavailable)),
			logx.Error(err),
		)

		return
	}

	received := make([]entity.Quote, 0, len(quotes))

	for _, ticker := range tickers {
		q, ok := quotes[ticker]
		if !ok {
			continue
		}

		received = append(received, q)
		metrics.QuotesReceived.WithLabelValues(ticker).Inc()

		w.processQuote(ctx, q, quotes, settings, overbought, oversold)
	}

	if w.cache != nil && len(received) > 0 {
		if err := w.cache.Store(ctx, received); err != nil {
			logger(ctx).Error("failed to cache quotes", logx.Error(err))
		}
	}

	metrics.Ticks.WithLabelValues("ok").Inc()
}

func (w *MarketLoop) processQuote(
	ctx context.Context,
	q entity.Quote,
	quotes map[string]entity.Quote,
	settings entity.MarketSettings,
	overbought, oversold decimal.Decimal,
) {
	w.history.Record(q.Ticker, q.Price)

	event := entity.NewPriceUpdateEvent(q)
	w.hub.Publish(value.GroupGlobal, event)
	w.hub.Publish(q.Ticker, event)

	if rsi, ok := indicator.LastRSI(w.history.Snapshot(q.Ticker), w.cfg.RSIPeriod); ok {
		w.checkZone(ctx, q, rsi, quotes, settings, overbought, oversold)
	}

	if _, err := w.alerts.Evaluate(ctx, q); err != nil {
		logger(ctx).Error("alert evaluation failed", slog.String(logx.FieldTicker, q.Ticker), logx.Error(err))
	}
}

// checkZone публикует возможность только при входе RSI в зону, а не на каждом такте внутри неё.
func (w *MarketLoop) checkZone(
	ctx context.Context,
	q entity.Quote,
	rsi decimal.Decimal,
	quotes map[string]entity.Quote,
	settings entity.MarketSettings,
	overbought, oversold decimal.Decimal,
) {
	zone := indicator.ClassifyZone(rsi, overbought, oversold)

	w.mu.Lock()
	prev := w.zones[q.Ticker]
	w.zones[q.Ticker] = zone
	w.mu.Unlock()

	if zone == indicator.ZoneNeutral || zone == prev {
		return
	}

	o := entity.Opportunity{
		Ticker: q.Ticker,
		Zone:   zone.String(),
		Price:  q.Price,
		RSI:    rsi,
		At:     w.now().UTC(),
	}

	if q.Ticker == w.cfg.BagTicker {
		if dollar, ok := quotes[w.cfg.DollarTicker]; ok {
			bag := pricing.CoffeeBagPrice(q.Price, dollar.Price, settings.CoffeeBasis, w.cfg.BagAdjustment)
			if bag.IsPositive() {
				o.BagPrice = &bag
			}
		}
	}

	o.Text = opportunityText(o)

	metrics.Opportunities.WithLabelValues(q.Ticker, o.Zone).Inc()
	w.hub.Publish(value.GroupGlobal, entity.NewAlertEvent(o.Text))

	logger(ctx).Info("market opportunity",
		slog.String(logx.FieldTicker, q.Ticker),
		slog.String("zone", o.Zone),
		slog.String("rsi", rsi.StringFixed(2)),
	)

	if w.opportunities == nil {
		return
	}

	select {
	case w.opportunities <- o:
	default:
		logger(ctx).Warn("opportunity channel is full, message dropped", slog.String(logx.FieldTicker, q.Ticker))
	}
}

func opportunityText(o entity.Opportunity) string {
	window := "Buy window"
	if o.Zone == indicator.ZoneOverbought.String() {
		window = "Sell window"
	}

	text := fmt.Sprintf("[OPPORTUNITY] %s: %s reached %s with RSI %s.",
		window, o.Ticker, o.Price.StringFixed(2), o.RSI.StringFixed(1))

	if o.BagPrice != nil {
		text += fmt.Sprintf(" Bag price R$ %s.", o.BagPrice.StringFixed(2))
	}

	return text
}

// loadSettings перечитывает настройки рынка на каждом такте; при ошибке или некорректных порогах
// используются пороги из конфигурации.
func (w *MarketLoop) loadSettings(ctx context.Context) (settings entity.MarketSettings, overbought, oversold decimal.Decimal) {
	s, err := w.settings.Get(ctx)
	if err != nil {
		if !domain.HasCode(err, errcodes.NotFound) {
			logger(ctx).Warn("failed to load market settings, using configured thresholds", logx.Error(err))
		}

		return entity.MarketSettings{}, w.cfg.Overbought, w.cfg.Oversold
	}

	overbought, oversold = s.Thresholds(w.cfg.Overbought, w.cfg.Oversold)
	if !oversold.LessThan(overbought) {
		return *s, w.cfg.Overbought, w.cfg.Oversold
	}

	return *s, overbought, oversold
}
