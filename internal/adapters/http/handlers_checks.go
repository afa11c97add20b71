package http

import (
	"context"
	"net/http"

	"github.com/nixer89/xrpl-services-backend/internal/application"
	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

type checkBody struct {
	FrontendID string `json:"frontendId"`
	PayloadID  string `json:"payloadId"`
	Referer    string `json:"referer"`
}

func (b checkBody) validate() bool {
	return b.FrontendID != "" && b.PayloadID != ""
}

type escrowCheckBody struct {
	checkBody
	Account  string `json:"account"`
	Sequence uint32 `json:"sequence"`
	Testnet  bool   `json:"testnet"`
}

// checkResultDTO is the wire form of a validation verdict. Failure reasons
// are reported as distinct flags so applications can branch on them.
type checkResultDTO struct {
	Success            bool   `json:"success"`
	Testnet            bool   `json:"testnet"`
	TxID               string `json:"txid,omitempty"`
	Account            string `json:"account,omitempty"`
	PayloadExpired     bool   `json:"payloadExpired,omitempty"`
	NoValidationWindow bool   `json:"noValidationTimeFrame,omitempty"`
	Error              bool   `json:"error,omitempty"`
}

func toCheckResultDTO(res domain.TransactionCheckResult) checkResultDTO {
	return checkResultDTO{
		Success:            res.Success,
		Testnet:            res.Testnet,
		TxID:               res.TxID,
		Account:            res.Account,
		PayloadExpired:     res.PayloadExpired,
		NoValidationWindow: res.NoValidationWindow,
		Error:              res.Error,
	}
}

func (h *Handler) checkRequestFromBody(r *http.Request, body checkBody) (application.CheckRequest, bool) {
	policy, ok := policyFromContext(r.Context())
	if !ok {
		return application.CheckRequest{}, false
	}
	return application.CheckRequest{
		Origin:        policy.Origin,
		Referrer:      body.Referer,
		ApplicationID: policy.ApplicationID,
		FrontendID:    body.FrontendID,
		PayloadID:     body.PayloadID,
	}, true
}

func (h *Handler) checkSignIn(w http.ResponseWriter, r *http.Request) {
	var body checkBody
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(r.Context(), w, "check_signin", err)
		return
	}
	if !body.validate() {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "frontendId and payloadId are required")
		return
	}
	req, ok := h.checkRequestFromBody(r, body)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	writeSuccess(w, http.StatusOK, h.service.CheckSignIn(r.Context(), req))
}

func (h *Handler) checkPayment(w http.ResponseWriter, r *http.Request) {
	h.handlePaymentCheck(w, r, "check_payment", h.service.CheckPayment)
}

func (h *Handler) checkTimedPayment(w http.ResponseWriter, r *http.Request) {
	h.handlePaymentCheck(w, r, "check_timed_payment", h.service.CheckTimedPayment)
}

func (h *Handler) handlePaymentCheck(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	check func(ctx context.Context, req application.CheckRequest) domain.TransactionCheckResult,
) {
	var body checkBody
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(r.Context(), w, operation, err)
		return
	}
	if !body.validate() {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "frontendId and payloadId are required")
		return
	}
	req, ok := h.checkRequestFromBody(r, body)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	writeSuccess(w, http.StatusOK, toCheckResultDTO(check(r.Context(), req)))
}

func (h *Handler) checkEscrowPayment(w http.ResponseWriter, r *http.Request) {
	var body escrowCheckBody
	if err := decodeBody(r, &body); err != nil {
		writeValidationError(r.Context(), w, "check_escrow_payment", err)
		return
	}
	if !body.validate() || body.Account == "" || body.Sequence == 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "frontendId, payloadId, account and sequence are required")
		return
	}
	req, ok := h.checkRequestFromBody(r, body.checkBody)
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing tenant context")
		return
	}

	result := h.service.CheckEscrowPayment(r.Context(), application.EscrowCheckRequest{
		CheckRequest: req,
		Account:      body.Account,
		Sequence:     body.Sequence,
		Testnet:      body.Testnet,
	})
	writeSuccess(w, http.StatusOK, toCheckResultDTO(result))
}
