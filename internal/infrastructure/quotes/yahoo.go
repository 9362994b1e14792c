package quotes

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"agromarket/internal/domain"
	"agromarket/internal/domain/entity"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/httpx"
	"agromarket/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

type YahooConfig struct {
	BaseURL        string
	Timeout        time.Duration
	RequestsPerMin int
	LogFieldMaxLen int
	Symbols        SymbolMap
}

// Yahoo поставщик котировок Yahoo Finance.
type Yahoo struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	symbols SymbolMap
	tickers map[string]string
	now     func() time.Time
}

func NewYahoo(cfg YahooConfig) *Yahoo {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultYahooBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 30
	}
	if cfg.Symbols == nil {
		cfg.Symbols = DefaultSymbols()
	}

	return &Yahoo{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: httpx.NewLoggingRoundTripper(
				http.DefaultTransport,
				httpx.WithLogFieldMaxLen(cfg.LogFieldMaxLen),
			),
		},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60), 1),
		symbols: cfg.Symbols,
		tickers: cfg.Symbols.Reverse(),
		now:     time.Now,
	}
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string           `json:"symbol"`
			RegularMarketPrice         *decimal.Decimal `json:"regularMarketPrice"`
			RegularMarketChangePercent *decimal.Decimal `json:"regularMarketChangePercent"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*decimal.Decimal `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// GetLatestQuotes возвращает последние котировки. Тикеры без символа и нулевые цены пропускаются.
func (y *Yahoo) GetLatestQuotes(ctx context.Context, tickers []string) (map[string]entity.Quote, error) {
	result := make(map[string]entity.Quote, len(tickers))

	symbols := make([]string, 0, len(tickers))
	for _, ticker := range tickers {
		if symbol, ok := y.symbols[ticker]; ok {
			symbols = append(symbols, symbol)
		}
	}

	if len(symbols) == 0 {
		return result, nil
	}

	query := url.Values{"symbols": {strings.Join(symbols, ",")}}

	var resp quoteResponse
	if err := y.get(ctx, "/v7/finance/quote?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	now := y.now().UTC()

	for _, item := range resp.QuoteResponse.Result {
		ticker, ok := y.tickers[item.Symbol]
		if !ok || item.RegularMarketPrice == nil || !item.RegularMarketPrice.IsPositive() {
			continue
		}

		change := decimal.Zero
		if item.RegularMarketChangePercent != nil {
			change = item.RegularMarketChangePercent.Round(2)
		}

		result[ticker] = entity.Quote{
			Ticker:        ticker,
			Price:         *item.RegularMarketPrice,
			ChangePercent: change,
			Timestamp:     now,
		}
	}

	return result, nil
}

// GetHistory возвращает ряд цен закрытия. Пустые точки пропускаются.
func (y *Yahoo) GetHistory(ctx context.Context, ticker, interval, rng string) ([]entity.HistoryPoint, error) {
	symbol, ok := y.symbols[ticker]
	if !ok {
		return nil, domain.NewError(errcodes.InvalidTicker, fmt.Sprintf("unknown ticker %q", ticker))
	}

	query := url.Values{"interval": {interval}, "range": {rng}}

	var resp chartResponse
	if err := y.get(ctx, "/v8/finance/chart/"+url.PathEscape(symbol)+"?"+query.Encode(), &resp); err != nil {
		return nil, err
	}

	if len(resp.Chart.Result) == 0 {
		return []entity.HistoryPoint{}, nil
	}

	series := resp.Chart.Result[0]
	if len(series.Indicators.Quote) == 0 {
		return []entity.HistoryPoint{}, nil
	}

	closes := series.Indicators.Quote[0].Close
	points := make([]entity.HistoryPoint, 0, len(series.Timestamp))

	for i, ts := range series.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}

		points = append(points, entity.HistoryPoint{Time: ts, Value: *closes[i]})
	}

	return points, nil
}

func (y *Yahoo) get(ctx context.Context, path string, dest any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("limiter.Wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; agromarket/1.0)")

	resp, err := y.client.Do(req)
	if err != nil {
		return domain.WrapError(err, errcodes.UpstreamUnavailable, "quote provider request failed")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger(ctx).Error("resp.Body.Close", logx.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.WrapError(err, errcodes.UpstreamUnavailable, "failed to read quote provider response")
	}

	if resp.StatusCode != http.StatusOK {
		logger(ctx).Warn(
			"quote provider returned non-200",
			slog.Int(logx.FieldResponseStatus, resp.StatusCode),
			slog.String(logx.FieldURL, path),
		)

		return domain.NewError(errcodes.UpstreamUnavailable, fmt.Sprintf("quote provider status %d", resp.StatusCode))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return domain.WrapError(err, errcodes.UpstreamUnavailable, "failed to decode quote provider response")
	}

	return nil
}
