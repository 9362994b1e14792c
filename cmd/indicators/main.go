package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/indicator"
	"agromarket/internal/infrastructure/quotes"
	"agromarket/pkg/contextx"
	"agromarket/pkg/logx"
)

// Считает индикаторы по истории поставщика без запуска сервиса.
//
//	go run ./cmd/indicators -ticker KC -interval 1d -range 6mo
//	go run ./cmd/indicators -ticker C8 -simulated
func main() {
	ticker := flag.String("ticker", "KC", "market ticker")
	interval := flag.String("interval", "1d", "history interval")
	rng := flag.String("range", "3mo", "history range")
	period := flag.Int("period", indicator.DefaultRSIPeriod, "RSI period")
	symbolsFile := flag.String("symbols", "", "YAML symbol map")
	simulated := flag.Bool("simulated", false, "use the simulated provider")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo, TimeFormat: time.TimeOnly}))
	ctx = contextx.WithLogger(ctx, log)

	source, err := newSource(*simulated, *symbolsFile)
	if err != nil {
		log.Error("newSource", logx.Error(err))
		os.Exit(1)
	}

	if err := run(ctx, source, *ticker, *interval, *rng, *period); err != nil {
		log.Error("indicators failed", logx.Error(err))
		os.Exit(1) //nolint:gocritic
	}
}

func newSource(simulated bool, symbolsFile string) (quotes.Source, error) {
	if simulated {
		return quotes.NewSimulated(uint64(time.Now().UnixNano()), quotes.DefaultSimulatedPrices(), 0.004), nil //nolint:gosec
	}

	symbols := quotes.DefaultSymbols()
	if symbolsFile != "" {
		loaded, err := quotes.LoadSymbolMap(symbolsFile)
		if err != nil {
			return nil, fmt.Errorf("quotes.LoadSymbolMap: %w", err)
		}
		symbols = loaded
	}

	return quotes.NewYahoo(quotes.YahooConfig{Symbols: symbols}), nil
}

func run(ctx context.Context, source quotes.Source, ticker, interval, rng string, period int) error {
	points, err := source.GetHistory(ctx, ticker, interval, rng)
	if err != nil {
		return fmt.Errorf("source.GetHistory: %w", err)
	}

	prices := lo.Map(points, func(p entity.HistoryPoint, _ int) decimal.Decimal { return p.Value })
	if len(prices) == 0 {
		return errors.New("provider returned no prices")
	}

	support, resistance := indicator.SupportResistance(prices)

	fmt.Printf("%s %s/%s: %d points, last %s\n", ticker, interval, rng, len(prices), prices[len(prices)-1])
	fmt.Printf("support %s, resistance %s\n", support, resistance)

	if len(prices) >= period {
		sma := indicator.SMA(prices, period)
		fmt.Printf("SMA(%d) %s\n", period, sma[len(sma)-1].StringFixed(2))
	}

	rsi, ok := indicator.LastRSI(prices, period)
	if !ok {
		fmt.Printf("RSI(%d) needs at least %d points\n", period, period+1)
		return nil
	}

	rec := indicator.Recommend(rsi)
	fmt.Printf("RSI(%d) %s: %s (%s)\n", period, rsi.StringFixed(1), rec.Signal, rec.Message)

	return nil
}
