package handler

import (
	th "github.com/mymmrac/telego/telegohandler"

	"agromarket/internal/transport/bot/middleware"
)

func (h *Handler) RegisterRoutes(bh *th.BotHandler, adminIDs []int64) {
	adminGroup := bh.Group(th.AnyMessage())
	adminGroup.Use(middleware.AdminOnly(adminIDs...))

	adminGroup.HandleMessage(h.OnStart, th.CommandEqual("start"))
	adminGroup.HandleMessage(h.OnStatus, th.CommandEqual("status"))

	adminGroup.HandleMessage(h.OnStartLoop, th.CommandEqual("startloop"))
	adminGroup.HandleMessage(h.OnStopLoop, th.CommandEqual("stoploop"))

	adminGroup.HandleMessage(h.OnWatchList, th.CommandEqual("watchlist"))
	adminGroup.HandleMessage(h.OnWatch, th.CommandEqual("watch"))
	adminGroup.HandleMessage(h.OnUnwatch, th.CommandEqual("unwatch"))
	adminGroup.HandleMessage(h.OnSetWatch, th.CommandEqual("setwatch"))

	adminGroup.HandleMessage(h.OnQuote, th.CommandEqual("quote"))
}
