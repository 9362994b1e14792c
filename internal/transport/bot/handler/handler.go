package handler

import (
	"context"
	"time"

	"agromarket/internal/domain/entity"
)

type marketLoop interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
	Interval() time.Duration
	Tickers() []string
	AddTicker(ticker string) bool
	RemoveTicker(ticker string) bool
	SetTickers(tickers []string)
}

type subscriberCounter interface {
	SubscriberCount() int
}

type quoteLookup interface {
	Get(ctx context.Context, ticker string) (*entity.Quote, error)
}

// Handler команды оператора рынка в Telegram.
type Handler struct {
	// loopCtx контекст приложения, в котором запускается цикл по /startloop.
	loopCtx context.Context //nolint:containedctx
	loop    marketLoop
	hub     subscriberCounter
	quotes  quoteLookup
}

func New(loopCtx context.Context, loop marketLoop, hub subscriberCounter, quotes quoteLookup) *Handler {
	return &Handler{
		loopCtx: loopCtx,
		loop:    loop,
		hub:     hub,
		quotes:  quotes,
	}
}
