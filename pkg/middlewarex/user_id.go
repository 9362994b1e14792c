package middlewarex

import (
	"log/slog"
	"net/http"

	"agromarket/pkg/contextx"
	"agromarket/pkg/logx"
)

// HeaderNameUserID carries the caller identity resolved by the upstream
// gateway.
const HeaderNameUserID = "X-User-Id"

// UserID puts the caller identity into the request context. Requests without a
// valid identity are passed through untouched; handlers that need a caller
// reject them.
func UserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderNameUserID)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := contextx.ParseUserID(raw)
		if err != nil {
			logger(r.Context()).Warn("contextx.ParseUserID", logx.Error(err))
			next.ServeHTTP(w, r)

			return
		}

		ctx := contextx.WithUserID(r.Context(), userID)
		ctx = contextx.WithLogger(ctx, logger(ctx).With(slog.Int64(logx.FieldUserID, userID.Int64())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
