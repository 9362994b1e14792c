package server

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/indicator"
	"agromarket/internal/domain/service/settings"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/httpx/reply"
	"agromarket/pkg/httpx/req"
	"agromarket/pkg/rest"
)

//nolint:gochecknoglobals
var (
	intervalPattern = regexp.MustCompile(`^\d{1,3}(m|h|d|wk|mo)$`)
	rangePattern    = regexp.MustCompile(`^(\d{1,3}(d|wk|mo|y)|ytd|max)$`)
)

type quoteReader interface {
	All(ctx context.Context) (map[string]entity.Quote, error)
}

type historySource interface {
	GetHistory(ctx context.Context, ticker, interval, rng string) ([]entity.HistoryPoint, error)
}

type priceWindow interface {
	Snapshot(ticker string) []decimal.Decimal
}

type settingsService interface {
	Get(ctx context.Context) (*entity.MarketSettings, error)
	Update(ctx context.Context, actorID int64, update entity.MarketSettings) (*entity.MarketSettings, error)
}

type MarketServer struct {
	quotes    quoteReader
	history   historySource
	window    priceWindow
	settings  settingsService
	rsiPeriod int
}

func NewMarketServer(
	quotes quoteReader,
	history historySource,
	window priceWindow,
	settingsSvc settingsService,
	rsiPeriod int,
) MarketServer {
	return MarketServer{
		quotes:    quotes,
		history:   history,
		window:    window,
		settings:  settingsSvc,
		rsiPeriod: cmp.Or(rsiPeriod, indicator.DefaultRSIPeriod),
	}
}

func (s MarketServer) getV1MarketQuotes(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	quotes, err := s.quotes.All(ctx)
	if err != nil {
		return fmt.Errorf("quotes.All: %w", err)
	}

	result := lo.MapToSlice(quotes, func(_ string, q entity.Quote) rest.Quote { return newRESTQuote(q) })
	slices.SortFunc(result, func(a, b rest.Quote) int { return cmp.Compare(a.Ticker, b.Ticker) })

	reply.JSON(ctx, w, http.StatusOK, result)

	return nil
}

func (s MarketServer) getV1MarketHistory(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	interval := cmp.Or(r.URL.Query().Get("interval"), "1h")
	rng := cmp.Or(r.URL.Query().Get("range"), "1d")

	if !intervalPattern.MatchString(interval) || !rangePattern.MatchString(rng) {
		return domain.NewError(errcodes.ValidationError, "invalid interval or range")
	}

	points, err := s.history.GetHistory(ctx, chi.URLParam(r, "ticker"), interval, rng)
	if err != nil {
		return fmt.Errorf("history.GetHistory: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lo.Map(points, func(p entity.HistoryPoint, _ int) rest.HistoryPoint {
		return newRESTHistoryPoint(p)
	}))

	return nil
}

// getV1MarketIndicators считает индикаторы по окну цен рыночного цикла.
func (s MarketServer) getV1MarketIndicators(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	ticker := chi.URLParam(r, "ticker")

	prices := s.window.Snapshot(ticker)
	if len(prices) == 0 {
		return domain.NewError(errcodes.NotFound, fmt.Sprintf("no prices observed for %q", ticker))
	}

	support, resistance := indicator.SupportResistance(prices)

	result := rest.Indicators{
		Ticker:     ticker,
		Depth:      len(prices),
		Period:     s.rsiPeriod,
		Support:    support,
		Resistance: resistance,
	}

	if sma := indicator.SMA(prices, s.rsiPeriod); len(prices) >= s.rsiPeriod {
		last := sma[len(sma)-1]
		result.SMA = &last
	}

	if rsi, ok := indicator.LastRSI(prices, s.rsiPeriod); ok {
		overbought, oversold := s.thresholds(ctx)

		result.RSI = &rsi
		result.Zone = indicator.ClassifyZone(rsi, overbought, oversold).String()
		result.Recommendation = newRESTRecommendation(indicator.Recommend(rsi))
	}

	reply.JSON(ctx, w, http.StatusOK, result)

	return nil
}

func (s MarketServer) getV1MarketSettings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	current, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("settings.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSettings(*current))

	return nil
}

func (s MarketServer) putV1MarketSettings(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	actorID, err := callerID(ctx)
	if err != nil {
		return err
	}

	var request rest.MarketSettings
	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	updated, err := s.settings.Update(ctx, actorID, newDomainSettings(request))
	if err != nil {
		return fmt.Errorf("settings.Update: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSettings(*updated))

	return nil
}

func (s MarketServer) thresholds(ctx context.Context) (overbought, oversold decimal.Decimal) {
	current, err := s.settings.Get(ctx)
	if err != nil {
		return settings.DefaultOverbought, settings.DefaultOversold
	}

	return current.Thresholds(settings.DefaultOverbought, settings.DefaultOversold)
}
