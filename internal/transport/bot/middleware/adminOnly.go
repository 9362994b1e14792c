package middleware

import (
	"slices"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// AdminOnly пропускает дальше только обновления от операторов из списка; остальные молча отбрасываются.
func AdminOnly(adminIDs ...int64) th.Handler {
	return func(ctx *th.Context, update telego.Update) error {
		if !IsAdmin(update, adminIDs) {
			return nil
		}

		return ctx.Next(update)
	}
}

func IsAdmin(update telego.Update, adminIDs []int64) bool {
	userID, ok := senderID(update)
	if !ok {
		return false
	}

	return slices.Contains(adminIDs, userID)
}

func senderID(update telego.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}
