package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/v1", func(r chi.Router) {
		r.Use(requireCaller)

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", handler(s.postV1Offer))
			r.Get("/sent", handler(s.getV1OffersSent))
			r.Get("/received", handler(s.getV1OffersReceived))
			r.Post("/{id}/respond", handler(s.postV1OfferRespond))
			r.Delete("/{id}", handler(s.deleteV1Offer))
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", handler(s.getV1Alerts))
			r.Post("/", handler(s.postV1Alert))
			r.Get("/commodities", handler(s.getV1AlertCommodities))
			r.Delete("/{id}", handler(s.deleteV1Alert))
		})

		r.Route("/market", func(r chi.Router) {
			r.Get("/quotes", handler(s.getV1MarketQuotes))
			r.Get("/history/{ticker}", handler(s.getV1MarketHistory))
			r.Get("/indicators/{ticker}", handler(s.getV1MarketIndicators))
			r.Get("/settings", handler(s.getV1MarketSettings))
			r.Put("/settings", handler(s.putV1MarketSettings))
		})
	})
}

// RegisterPushRoutes регистрирует websocket вне логирования ответа: кадры соединения не пишутся в лог.
func (s Server) RegisterPushRoutes(r chi.Router) {
	r.Get("/ws", s.serveWS)
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	}
}
