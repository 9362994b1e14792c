package notifier

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"agromarket/internal/domain/entity"
	"agromarket/internal/metrics"
	"agromarket/pkg/logx"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *telego.SendMessageParams) (*telego.Message, error)
}

// TelegramBot пересылает рыночные возможности в чат операторов.
type TelegramBot struct {
	bot    messageSender
	chatID int64
}

func NewTelegramBot(token string, chatID int64) (*TelegramBot, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramBot{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// Run читает возможности из канала до отмены контекста или закрытия канала.
func (b *TelegramBot) Run(ctx context.Context, opportunities <-chan entity.Opportunity) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case o, ok := <-opportunities:
			if !ok {
				return nil
			}
			if err := b.SendOpportunity(ctx, o); err != nil {
				metrics.NotificationFailures.WithLabelValues("telegram").Inc()
				logger(ctx).Error("failed to send opportunity", slog.String(logx.FieldTicker, o.Ticker), logx.Error(err))
			}
		}
	}
}

func (b *TelegramBot) SendOpportunity(ctx context.Context, o entity.Opportunity) error {
	return b.sendHTML(ctx, FormatOpportunity(o))
}

// SendText отправляет простое текстовое сообщение.
func (b *TelegramBot) SendText(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text)

	_, err := b.bot.SendMessage(ctx, msg)
	return err
}

func (b *TelegramBot) sendHTML(ctx context.Context, text string) error {
	msg := tu.Message(tu.ID(b.chatID), text).WithParseMode(telego.ModeHTML)

	if _, err := b.bot.SendMessage(ctx, msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

func FormatOpportunity(o entity.Opportunity) string {
	icon := "📉"
	if o.Zone == "overbought" {
		icon = "📈"
	}

	text := fmt.Sprintf(
		"%s <b>OPPORTUNITY %s</b>\n\n"+
			"<b>Zone:</b> %s\n"+
			"<b>Price:</b> %s\n"+
			"<b>RSI:</b> %s\n",
		icon,
		html.EscapeString(o.Ticker),
		html.EscapeString(o.Zone),
		o.Price.String(),
		o.RSI.StringFixed(1),
	)

	if o.BagPrice != nil {
		text += fmt.Sprintf("<b>Bag (60kg):</b> R$ %s\n", o.BagPrice.StringFixed(2))
	}

	if o.Text != "" {
		text += "\n" + html.EscapeString(o.Text)
	}

	return text
}
