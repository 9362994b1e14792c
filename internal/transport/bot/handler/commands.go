package handler

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
	"github.com/samber/lo"

	"agromarket/internal/domain"
	"agromarket/internal/transport/bot/view"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/logx"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9]{1,12}$`) //nolint:gochecknoglobals

func (h *Handler) OnStart(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, view.StartMessage)
}

func (h *Handler) OnStatus(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.statusText())
}

func (h *Handler) OnStartLoop(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.startLoop())
}

func (h *Handler) OnStopLoop(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.stopLoop())
}

func (h *Handler) OnWatchList(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.watchListText())
}

// OnWatch добавляет тикер в список наблюдения.
// Использование: /watch KC
func (h *Handler) OnWatch(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.watch(commandArgs(msg.Text)))
}

// OnUnwatch убирает тикер из списка наблюдения.
// Использование: /unwatch KC
func (h *Handler) OnUnwatch(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.unwatch(commandArgs(msg.Text)))
}

// OnSetWatch заменяет список наблюдения.
// Использование: /setwatch KC C8 USDBRL
func (h *Handler) OnSetWatch(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.setWatch(commandArgs(msg.Text)))
}

func (h *Handler) OnQuote(ctx *th.Context, msg telego.Message) error {
	return h.sendHTML(ctx, msg.Chat.ID, h.quoteText(ctx, commandArgs(msg.Text)))
}

func (h *Handler) statusText() string {
	loopStatus := view.LoopStopped
	if h.loop.IsRunning() {
		loopStatus = view.LoopRunning
	}

	tickers := h.loop.Tickers()
	tickerList := "нет"
	if len(tickers) > 0 {
		tickerList = strings.Join(tickers, ", ")
	}

	return fmt.Sprintf(view.StatusTemplate,
		loopStatus,
		h.loop.Interval(),
		html.EscapeString(tickerList),
		h.hub.SubscriberCount(),
	)
}

func (h *Handler) startLoop() string {
	if h.loop.IsRunning() {
		return view.LoopAlreadyRunning
	}

	if err := h.loop.Start(h.loopCtx); err != nil {
		return fmt.Sprintf(view.LoopStartFailed, html.EscapeString(err.Error()))
	}

	logger(h.loopCtx).Info("market loop started by operator")

	return view.LoopStarted
}

func (h *Handler) stopLoop() string {
	if !h.loop.IsRunning() {
		return view.LoopNotRunning
	}

	h.loop.Stop()

	logger(h.loopCtx).Info("market loop stopped by operator")

	return view.LoopHalted
}

func (h *Handler) watchListText() string {
	tickers := h.loop.Tickers()
	if len(tickers) == 0 {
		return view.WatchListEmpty
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, view.WatchListTitle, len(tickers))

	for i, t := range tickers {
		fmt.Fprintf(&sb, view.WatchListItem, i+1, t)
	}

	return sb.String()
}

func (h *Handler) watch(args []string) string {
	if len(args) == 0 {
		return view.WatchUsage
	}

	ticker, ok := normalizeTicker(args[0])
	if !ok {
		return fmt.Sprintf(view.InvalidTicker, html.EscapeString(args[0]))
	}

	if !h.loop.AddTicker(ticker) {
		return fmt.Sprintf(view.TickerExists, ticker)
	}

	return fmt.Sprintf(view.TickerAdded, ticker)
}

func (h *Handler) unwatch(args []string) string {
	if len(args) == 0 {
		return view.UnwatchUsage
	}

	ticker, ok := normalizeTicker(args[0])
	if !ok {
		return fmt.Sprintf(view.InvalidTicker, html.EscapeString(args[0]))
	}

	if !h.loop.RemoveTicker(ticker) {
		return fmt.Sprintf(view.TickerMissing, ticker)
	}

	return fmt.Sprintf(view.TickerRemoved, ticker)
}

func (h *Handler) setWatch(args []string) string {
	if len(args) == 0 {
		return view.SetWatchUsage
	}

	var (
		tickers []string
		invalid []string
	)

	for _, arg := range args {
		ticker, ok := normalizeTicker(arg)
		if !ok {
			invalid = append(invalid, html.EscapeString(arg))
			continue
		}
		tickers = append(tickers, ticker)
	}

	tickers = lo.Uniq(tickers)
	if len(tickers) == 0 {
		return view.NoValidTickers
	}

	h.loop.SetTickers(tickers)

	var sb strings.Builder
	fmt.Fprintf(&sb, view.WatchListSet, len(tickers))

	for i, t := range tickers {
		fmt.Fprintf(&sb, view.WatchListItem, i+1, t)
	}

	if len(invalid) > 0 {
		fmt.Fprintf(&sb, view.SkippedTickers, strings.Join(invalid, ", "))
	}

	return sb.String()
}

func (h *Handler) quoteText(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return view.QuoteUsage
	}

	ticker, ok := normalizeTicker(args[0])
	if !ok {
		return fmt.Sprintf(view.InvalidTicker, html.EscapeString(args[0]))
	}

	quote, err := h.quotes.Get(ctx, ticker)
	if err != nil {
		if domain.HasCode(err, errcodes.NotFound) {
			return fmt.Sprintf(view.QuoteNotFound, ticker)
		}

		logger(ctx).Error("quotes.Get", logx.Error(err))

		return view.QuoteFailed
	}

	return fmt.Sprintf(view.QuoteTemplate,
		quote.Ticker,
		quote.Price.String(),
		quote.ChangePercent.StringFixed(2),
		quote.Timestamp.UTC().Format(time.DateTime),
	)
}

func (h *Handler) sendHTML(ctx *th.Context, chatID int64, text string) error {
	_, err := ctx.Bot().SendMessage(ctx, tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML))
	if err != nil {
		return fmt.Errorf("bot.SendMessage: %w", err)
	}

	return nil
}

// commandArgs возвращает аргументы команды без самой команды.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return nil
	}

	return fields[1:]
}

func normalizeTicker(raw string) (string, bool) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))

	return ticker, tickerPattern.MatchString(ticker)
}
