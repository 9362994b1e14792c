package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agromarket/pkg/logx"
	"agromarket/pkg/middlewarex"
)

// NewHandler собирает роутер: общий стек middleware, затем REST с логированием тел и websocket без него.
func NewHandler(s Server, logFieldMaxLen int) http.Handler {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.UserID,
	)

	r.Group(func(r chi.Router) {
		r.Use(
			middlewarex.RequestLogging(masker, logFieldMaxLen),
			middlewarex.ResponseLogging(masker, logFieldMaxLen),
		)
		s.RegisterRoutes(r)
	})

	s.RegisterPushRoutes(r)

	return r
}
