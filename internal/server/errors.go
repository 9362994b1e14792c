package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"agromarket/internal/domain"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/httpx/reply"
	"agromarket/pkg/logx"
)

//nolint:gochecknoglobals
var statusByCode = map[failure.ErrorCode]int{
	errcodes.ValidationError:     http.StatusBadRequest,
	errcodes.InvalidTicker:       http.StatusBadRequest,
	errcodes.Unauthorized:        http.StatusUnauthorized,
	errcodes.Forbidden:           http.StatusForbidden,
	errcodes.NotFound:            http.StatusNotFound,
	errcodes.InvalidLot:          http.StatusNotFound,
	errcodes.Conflict:            http.StatusConflict,
	errcodes.OutOfTurn:           http.StatusConflict,
	errcodes.AlreadyClosed:       http.StatusConflict,
	errcodes.InvalidCounter:      http.StatusUnprocessableEntity,
	errcodes.SelfTrade:           http.StatusUnprocessableEntity,
	errcodes.UpstreamUnavailable: http.StatusBadGateway,
}

// writeError отвечает по коду доменной ошибки; прочие ошибки классифицирует reply.Error.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		reply.Error(ctx, w, err)
		return
	}

	status, ok := statusByCode[appErr.Code]
	if !ok {
		reply.Error(ctx, w, err)
		return
	}

	if status >= http.StatusInternalServerError {
		logger(ctx).Error("upstream error", logx.Error(err))
	} else {
		logger(ctx).Info("request rejected", slog.String("code", appErr.Code.String()), logx.Error(err))
	}

	reply.Status(ctx, w, status, appErr.Code, appErr.Message)
}
