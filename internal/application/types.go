package application

import (
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// PayloadOptions enumerates the recognized per-request options. Unknown
// fields from callers are dropped at the HTTP boundary instead of being
// carried around in loose bags.
type PayloadOptions struct {
	FrontendID       string `json:"frontendId"`
	Web              bool   `json:"web"`
	PushDisabled     bool   `json:"pushDisabled"`
	Referer          string `json:"referer"`
	XRPLAccount      string `json:"xrplAccount"`
	SignInToValidate bool   `json:"signinToValidate"`
	Issuing          bool   `json:"issuing"`
}

// SubmitPayloadRequest asks the platform to issue a new signing request.
type SubmitPayloadRequest struct {
	Origin        string
	ApplicationID string
	Options       PayloadOptions
	Submission    ports.PayloadSubmission
}

// SubmitPayloadResponse acknowledges a submitted payload.
type SubmitPayloadResponse struct {
	Success    bool   `json:"success"`
	PayloadID  string `json:"payloadId,omitempty"`
	NextAlways string `json:"nextAlways,omitempty"`
	NextNoPush string `json:"nextNoPush,omitempty"`
	QRPNG      string `json:"qrPng,omitempty"`
}

// CheckRequest identifies one payload result check.
type CheckRequest struct {
	Origin        string
	Referrer      string
	ApplicationID string
	FrontendID    string
	PayloadID     string
}

// SignInCheckResult reports a sign-in validation outcome.
type SignInCheckResult struct {
	Success      bool   `json:"success"`
	Account      string `json:"account,omitempty"`
	WalletUserID string `json:"walletUserId,omitempty"`
}

// EscrowCheckRequest gates an escrow execution record on a verified payment.
type EscrowCheckRequest struct {
	CheckRequest
	Account  string
	Sequence uint32
	Testnet  bool
}

// Notification is the out-of-band webhook carrying a payload's definitive
// outcome. Token authenticity is checked against the tenant webhook secret.
type Notification struct {
	ApplicationID string
	PayloadID     string
	UserToken     string
	SignedToken   string
}
