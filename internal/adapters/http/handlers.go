package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/nixer89/xrpl-services-backend/internal/application"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

type submitPayloadBody struct {
	TxJSON           json.RawMessage            `json:"txjson"`
	UserToken        string                     `json:"userToken"`
	CustomIdentifier string                     `json:"customIdentifier"`
	Options          application.PayloadOptions `json:"options"`
}

func (h *Handler) submitPayload(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	var body submitPayloadBody
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(r.Context(), w, "submit_payload", err)
		return
	}
	if len(body.TxJSON) == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "txjson is required")
		return
	}

	res, err := h.service.SubmitPayload(r.Context(), application.SubmitPayloadRequest{
		Origin:        policy.Origin,
		ApplicationID: policy.ApplicationID,
		Options:       body.Options,
		Submission: ports.PayloadSubmission{
			TxJSON:           body.TxJSON,
			TxType:           payloadTypeFromTx(body.TxJSON),
			UserToken:        body.UserToken,
			CustomIdentifier: body.CustomIdentifier,
		},
	})
	if err != nil {
		writeMappedError(r.Context(), w, "submit_payload", err)
		return
	}
	writeSuccess(w, http.StatusCreated, res)
}

func (h *Handler) getPayload(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	details, err := h.service.GetPayload(r.Context(), policy.Origin, policy.ApplicationID, chi.URLParam(r, "payload_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_payload", err)
		return
	}
	writeSuccess(w, http.StatusOK, toPayloadDetailsDTO(details))
}

func (h *Handler) getPayloadByCustomIdentifier(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	details, err := h.service.GetPayloadByCustomIdentifier(r.Context(), policy.Origin, policy.ApplicationID, chi.URLParam(r, "custom_identifier"))
	if err != nil {
		writeMappedError(r.Context(), w, "get_payload_by_custom_identifier", err)
		return
	}
	writeSuccess(w, http.StatusOK, toPayloadDetailsDTO(details))
}

func (h *Handler) deletePayload(w http.ResponseWriter, r *http.Request) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	if err := h.service.DeletePayload(r.Context(), policy.Origin, policy.ApplicationID, chi.URLParam(r, "payload_id")); err != nil {
		writeMappedError(r.Context(), w, "delete_payload", err)
		return
	}
	writeMessage(w, http.StatusOK, "payload cancelled")
}

// payloadTypeFromTx classifies the submitted transaction template into the
// ownership type buckets. Anything that is not a payment or sign-in stays in
// the catch-all bucket.
func payloadTypeFromTx(txJSON json.RawMessage) string {
	var tx struct {
		TransactionType string `json:"TransactionType"`
	}
	if err := json.Unmarshal(txJSON, &tx); err != nil {
		return domain.PayloadTypeAny
	}
	switch strings.ToLower(tx.TransactionType) {
	case "payment":
		return domain.PayloadTypePayment
	case "signin":
		return domain.PayloadTypeSignIn
	default:
		return domain.PayloadTypeAny
	}
}

type payloadDetailsDTO struct {
	Meta struct {
		Exists   bool `json:"exists"`
		Resolved bool `json:"resolved"`
		Signed   bool `json:"signed"`
		Expired  bool `json:"expired"`
	} `json:"meta"`
	Payload struct {
		TxType           string `json:"txType"`
		CustomIdentifier string `json:"customIdentifier,omitempty"`
	} `json:"payload"`
	Response struct {
		Account          string `json:"account,omitempty"`
		TxID             string `json:"txid,omitempty"`
		DispatchedResult string `json:"dispatchedResult,omitempty"`
		ResolvedAt       string `json:"resolvedAt,omitempty"`
	} `json:"response"`
}

// toPayloadDetailsDTO exposes the payload state an application may see.
// The signed blob and wallet user token stay internal.
func toPayloadDetailsDTO(details domain.PayloadDetails) payloadDetailsDTO {
	var dto payloadDetailsDTO
	dto.Meta.Exists = details.Meta.Exists
	dto.Meta.Resolved = details.Meta.Resolved
	dto.Meta.Signed = details.Meta.Signed
	dto.Meta.Expired = details.Meta.Expired
	dto.Payload.TxType = details.Payload.TxType
	dto.Payload.CustomIdentifier = details.Payload.CustomIdentifier
	dto.Response.Account = details.Response.Account
	dto.Response.TxID = details.Response.TxID
	dto.Response.DispatchedResult = details.Response.DispatchedResult
	dto.Response.ResolvedAt = details.Response.ResolvedAt
	return dto
}
