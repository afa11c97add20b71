package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nixer89/xrpl-services-backend/internal/application"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// Handler is the HTTP adapter entrypoint for the payload engine. It holds the
// application service plus the two collaborators the middleware needs
// directly: the policy cache for tenant API-key auth and the token verifier
// for the admin route.
type Handler struct {
	service  *application.Service
	policies ports.PolicyCache
	tokens   ports.TokenVerifier
}

func NewHandler(service *application.Service, policies ports.PolicyCache, tokens ports.TokenVerifier) *Handler {
	return &Handler{service: service, policies: policies, tokens: tokens}
}

// NewRouter registers the HTTP routes and middleware stack. Centralizing
// routes here keeps tenant auth and error behavior consistent across
// endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/platform/v1", func(r chi.Router) {
		// The webhook authenticates through its signed token, not tenant keys.
		r.Post("/webhook", handler.webhook)

		r.Group(func(r chi.Router) {
			r.Use(handler.adminAuthMiddleware)
			r.Post("/cache/reset", handler.resetCache)
		})

		r.Group(func(r chi.Router) {
			r.Use(handler.tenantAuthMiddleware)

			r.Post("/payload", handler.submitPayload)
			r.Get("/payload/{payload_id}", handler.getPayload)
			r.Get("/payload/ci/{custom_identifier}", handler.getPayloadByCustomIdentifier)
			r.Delete("/payload/{payload_id}", handler.deletePayload)

			r.Post("/check/signin", handler.checkSignIn)
			r.Post("/check/payment", handler.checkPayment)
			r.Post("/check/payment/timed", handler.checkTimedPayment)
			r.Post("/check/escrow", handler.checkEscrowPayment)

			r.Get("/ownership", handler.queryOwnership)
			r.Get("/identity/frontend/{frontend_id}", handler.resolveFrontendIdentity)
			r.Get("/identity/account/{account}", handler.resolveAccountIdentity)
		})
	})

	return r
}
