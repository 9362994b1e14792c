package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"agromarket/internal/domain"
	"agromarket/pkg/contextx"
	"agromarket/pkg/errcodes"
	"agromarket/pkg/httpx/reply"
)

// requireCaller отклоняет запросы без идентичности, выставленной middlewarex.UserID.
func requireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := contextx.UserIDFromContext(r.Context()); err != nil {
			reply.Status(r.Context(), w, http.StatusUnauthorized, errcodes.Unauthorized, "caller identity is required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerID(ctx context.Context) (int64, error) {
	userID, err := contextx.UserIDFromContext(ctx)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.Unauthorized, "caller identity is required")
	}

	return userID.Int64(), nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewError(errcodes.ValidationError, "invalid "+name)
	}

	return id, nil
}
