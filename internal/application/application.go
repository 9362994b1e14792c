package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"agromarket/internal/config"
	"agromarket/internal/domain/entity"
	"agromarket/internal/domain/service/alert"
	"agromarket/internal/domain/service/history"
	"agromarket/internal/domain/service/negotiation"
	"agromarket/internal/domain/service/notify"
	"agromarket/internal/domain/service/settings"
	"agromarket/internal/infrastructure/broadcast"
	"agromarket/internal/infrastructure/cache"
	"agromarket/internal/infrastructure/mailer"
	"agromarket/internal/infrastructure/notifier"
	"agromarket/internal/infrastructure/persistence"
	"agromarket/internal/infrastructure/quotes"
	"agromarket/internal/server"
	"agromarket/internal/transport/bot"
	"agromarket/internal/transport/bot/handler"
	"agromarket/internal/worker"
	"agromarket/pkg/application/connectors"
	"agromarket/pkg/application/modules"
	"agromarket/pkg/contextx"
	"agromarket/pkg/logx"
)

const (
	opportunityBuffer = 32
	simulatedMaxStep  = 0.004
)

// Run собирает зависимости и держит модули приложения до отмены контекста.
func Run(ctx context.Context, cfg config.Config) error { //nolint:funlen
	log := contextx.LoggerFromContextOrDefault(ctx)

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	rds := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rds.Client(ctx)
	defer rds.Close(ctx)

	// Repositories
	alertRepo := persistence.NewAlertRepository(db)
	offerRepo := persistence.NewOfferRepository(db)
	lotRepo := persistence.NewLotRepository(db)
	userRepo := persistence.NewUserRepository(db)
	commodityRepo := persistence.NewCommodityRepository(db)
	settingsRepo := persistence.NewSettingsRepository(db)

	quoteCache := cache.NewQuoteCache(redisClient, cfg.Redis.QuotesKey)

	// Mail queue
	asynqRedis := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	}
	asynqClient := asynq.NewClient(asynqRedis)
	defer func() {
		if err := asynqClient.Close(); err != nil {
			log.Error("asynqClient.Close", logx.Error(err))
		}
	}()

	// Domain services
	hub := broadcast.NewHub(cfg.HTTP.PushMailboxSize)
	userNotifier := notify.New(hub, userRepo).WithMail(mailer.NewQueue(asynqClient))

	source, err := newQuoteSource(cfg)
	if err != nil {
		return fmt.Errorf("newQuoteSource: %w", err)
	}

	prices := history.New(cfg.Market.HistoryDepth)
	matcher := alert.NewMatcher(alertRepo, userNotifier).WithTriggerBand(cfg.Market.AlertBandDecimal())
	alertService := alert.NewService(alertRepo, commodityRepo)
	settingsService := settings.NewService(settingsRepo, userRepo)
	engine := negotiation.NewEngine(offerRepo, lotRepo, userNotifier)

	loop := worker.NewMarketLoop(source, prices, hub, matcher, settingsService, worker.LoopConfig{
		Interval:      cfg.Market.LoopInterval(),
		Tickers:       cfg.Market.Tickers,
		RSIPeriod:     cfg.Market.RSIPeriod,
		Overbought:    cfg.Market.OverboughtDecimal(),
		Oversold:      cfg.Market.OversoldDecimal(),
		BagTicker:     cfg.Market.BagTicker,
		DollarTicker:  cfg.Market.DollarTicker,
		BagAdjustment: cfg.Market.BagAdjustmentDecimal(),
	}).WithQuoteStore(quoteCache)

	g, ctx := errgroup.WithContext(ctx)

	// Operator bots
	if cfg.Bot.Enabled() {
		opportunities := make(chan entity.Opportunity, opportunityBuffer)
		loop.WithOpportunities(opportunities)

		if err := runBots(ctx, g, cfg.Bot, loop, hub, quoteCache, opportunities); err != nil {
			return fmt.Errorf("runBots: %w", err)
		}
	} else {
		log.Warn("BOT_TOKEN is empty, operator bots are disabled")
	}

	if err := loop.Start(ctx); err != nil {
		return fmt.Errorf("loop.Start: %w", err)
	}
	defer loop.Stop()

	// HTTP
	srv := server.NewServer(
		server.NewOfferServer(engine),
		server.NewAlertServer(alertService),
		server.NewMarketServer(quoteCache, source, prices, settingsService, cfg.Market.RSIPeriod),
		server.NewPushServer(hub, cfg.HTTP.AllowedOrigins),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.ListenAddress,
		Handler:           server.NewHandler(srv, cfg.HTTP.LogFieldMaxLen),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(ctx, g, httpServer)
	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(ctx, g)
	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsListenAddress}.Run(ctx, g)
	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   cfg.Mail.QueueConcurrency,
	}.Run(ctx, g,
		modules.AsynqQueues{mailer.QueueName: 1},
		modules.AsynqHandler{
			Pattern: mailer.TypeSendEmail,
			Handle:  mailer.NewHandler(newMailSender(cfg.Mail)).HandleSendEmail,
		},
	)

	log.Info("application started",
		slog.String("provider", cfg.Market.Provider),
		slog.Any("tickers", cfg.Market.Tickers),
	)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("g.Wait: %w", err)
	}

	return nil
}

func newQuoteSource(cfg config.Config) (quotes.Source, error) {
	if cfg.Market.Provider == config.ProviderSimulated {
		return quotes.NewSimulated(cfg.Market.SimulatedSeed, quotes.DefaultSimulatedPrices(), simulatedMaxStep), nil
	}

	symbols := quotes.DefaultSymbols()
	if cfg.Market.SymbolsFile != "" {
		loaded, err := quotes.LoadSymbolMap(cfg.Market.SymbolsFile)
		if err != nil {
			return nil, fmt.Errorf("quotes.LoadSymbolMap: %w", err)
		}
		symbols = loaded
	}

	return quotes.NewYahoo(quotes.YahooConfig{
		BaseURL:        cfg.Market.YahooBaseURL,
		Timeout:        cfg.Market.RequestTimeout,
		RequestsPerMin: cfg.Market.RequestsPerMin,
		LogFieldMaxLen: cfg.HTTP.LogFieldMaxLen,
		Symbols:        symbols,
	}), nil
}

func newMailSender(cfg config.Mail) mailer.Sender {
	if cfg.SMTPHost == "" {
		return mailer.LogSender{}
	}

	return mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.From,
	})
}

func runBots(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Bot,
	loop *worker.MarketLoop,
	hub *broadcast.Hub,
	quoteCache *cache.QuoteCache,
	opportunities <-chan entity.Opportunity,
) error {
	opportunityBot, err := notifier.NewTelegramBot(cfg.Token, cfg.ChatID)
	if err != nil {
		return fmt.Errorf("notifier.NewTelegramBot: %w", err)
	}

	operatorBot, err := bot.New(cfg.Token, cfg.AdminIDs, handler.New(ctx, loop, hub, quoteCache))
	if err != nil {
		return fmt.Errorf("bot.New: %w", err)
	}

	g.Go(func() error {
		return ignoreCanceled(opportunityBot.Run(ctx, opportunities))
	})
	g.Go(func() error {
		return ignoreCanceled(operatorBot.Run(ctx))
	})

	return nil
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
