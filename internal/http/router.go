package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"chargehub/internal/http/handlers"
)

// NewRouter registers the transaction query endpoints.
func NewRouter(transactions *handlers.TransactionsHandler, health http.HandlerFunc) http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Get("/", transactions.List)
		r.Get("/{transactionId}", transactions.Details)
		r.Get("/{transactionId}/latest", transactions.Latest)
		r.Get("/charger/{chargeBoxId}/latest", transactions.LatestForCharger)
	})

	r.Get("/health", health)

	return r
}
