package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"card_market/pkg/httpx/reply"
	"card_market/pkg/logx"
	"card_market/pkg/middlewarex"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			// unauthorized zone: the gateway authenticates with a signature
			r.Post("/payments/webhook", handler(s.postV1PaymentWebhook))

			r.Group(func(r chi.Router) {
				r.Use(s.auth)

				r.Route("/offers", func(r chi.Router) {
					r.Post("/", handler(s.postV1Offers))
					r.Get("/", handler(s.getV1Offers))
					r.Get("/{id}", handler(s.getV1Offer))
					r.Put("/{id}/accept", handler(s.putV1OfferAccept))
					r.Put("/{id}/decline", handler(s.putV1OfferDecline))
					r.Put("/{id}/cancel", handler(s.putV1OfferCancel))
				})

				r.Post("/payments/sessions", handler(s.postV1PaymentSessions))
				r.Get("/transactions", handler(s.getV1Transactions))
			})
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			reply.Error(r.Context(), w, err)
		}
	}
}

// Handler собирает роутер со сквозными middleware.
func (s Server) Handler(logFieldMaxLen int) http.Handler {
	r := chi.NewRouter()

	masker := logx.NewSensitiveDataMasker()

	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
		middlewarex.Recovery,
	)

	s.RegisterRoutes(r)

	return r
}
