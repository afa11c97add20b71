package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nixer89/xrpl-services-backend/internal/application"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

type webhookBody struct {
	ApplicationID string `json:"applicationId"`
	PayloadID     string `json:"payloadId"`
	UserToken     string `json:"userToken"`
	SignedToken   string `json:"signedToken"`
}

// webhook ingests the platform's payload resolution notification. The caller
// authenticates through the signed token alone; a verification failure and an
// unknown application both map to 401 so probing reveals nothing.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	var body webhookBody
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(r.Context(), w, "webhook", err)
		return
	}
	if body.ApplicationID == "" || body.PayloadID == "" || body.SignedToken == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "applicationId, payloadId and signedToken are required")
		return
	}

	err := h.service.HandleNotification(r.Context(), application.Notification{
		ApplicationID: body.ApplicationID,
		PayloadID:     body.PayloadID,
		UserToken:     body.UserToken,
		SignedToken:   body.SignedToken,
	})
	if err != nil {
		writeMappedError(r.Context(), w, "webhook", err)
		return
	}
	writeMessage(w, http.StatusOK, "notification processed")
}

func (h *Handler) resetCache(w http.ResponseWriter, r *http.Request) {
	h.service.ResetCache()
	writeMessage(w, http.StatusOK, "cache reset")
}

func (h *Handler) queryOwnership(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	identity := r.URL.Query().Get("identity")
	if identity == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "identity is required")
		return
	}
	space := domain.IdentitySpace(r.URL.Query().Get("space"))
	switch space {
	case domain.SpaceFrontend, domain.SpaceWalletUser, domain.SpaceAccount:
	case "":
		space = domain.SpaceFrontend
	default:
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "unknown identity space")
		return
	}

	ids := h.service.QueryOwnership(r.Context(), ports.OwnershipQuery{
		Space:         space,
		Origin:        policy.Origin,
		Referrer:      r.URL.Query().Get("referer"),
		ApplicationID: policy.ApplicationID,
		IdentityValue: identity,
		PayloadType:   r.URL.Query().Get("type"),
	})
	writeSuccess(w, http.StatusOK, map[string]any{"payloadIds": ids})
}

func (h *Handler) resolveFrontendIdentity(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	walletUserID := h.service.ResolveWalletUser(r.Context(), policy.ApplicationID, chi.URLParam(r, "frontend_id"))
	writeSuccess(w, http.StatusOK, map[string]any{"walletUserId": walletUserID})
}

func (h *Handler) resolveAccountIdentity(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	walletUserID := h.service.ResolveWalletUserByAccount(r.Context(), policy.ApplicationID, chi.URLParam(r, "account"))
	writeSuccess(w, http.StatusOK, map[string]any{"walletUserId": walletUserID})
}
