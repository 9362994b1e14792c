package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"agromarket/internal/transport/bot/handler"
	"agromarket/pkg/contextx"
	"agromarket/pkg/logx"
)

const pollTimeoutSeconds = 60

// Bot Telegram-бот операторов рынка.
type Bot struct {
	bot      *telego.Bot
	handler  *handler.Handler
	adminIDs []int64
}

func New(token string, adminIDs []int64, h *handler.Handler) (*Bot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("telego.NewBot: %w", err)
	}

	return &Bot{
		bot:      bot,
		handler:  h,
		adminIDs: adminIDs,
	}, nil
}

// Run получает обновления long polling до отмены контекста.
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: pollTimeoutSeconds,
	})
	if err != nil {
		return fmt.Errorf("bot.UpdatesViaLongPolling: %w", err)
	}

	botHandler, err := th.NewBotHandler(b.bot, updates)
	if err != nil {
		return fmt.Errorf("th.NewBotHandler: %w", err)
	}

	b.handler.RegisterRoutes(botHandler, b.adminIDs)

	log := contextx.LoggerFromContextOrDefault(ctx)

	go func() {
		if err := botHandler.Start(); err != nil {
			log.Error("bot handler stopped", logx.Error(err))
		}
	}()

	log.Info("operator bot started")

	<-ctx.Done()

	if err := botHandler.Stop(); err != nil {
		log.Error("botHandler.Stop", logx.Error(err))
	}

	return ctx.Err()
}
