package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IdentitySpace distinguishes the three identity namespaces a payload can be
// owned under. A single generic record type parameterized by space replaces
// three hand-duplicated collections.
type IdentitySpace string

const (
	SpaceFrontend   IdentitySpace = "frontend_id"
	SpaceWalletUser IdentitySpace = "wallet_user"
	SpaceAccount    IdentitySpace = "account"
)

// PayloadTypeAny is the catch-all bucket for blank/unspecified payload types.
const PayloadTypeAny = "*"

const (
	PayloadTypeSignIn  = "signin"
	PayloadTypePayment = "payment"
)

// OwnershipRecord maps one identity to the payloads it is entitled to read,
// partitioned by payload type.
type OwnershipRecord struct {
	Space         IdentitySpace
	Origin        string
	Referrer      string
	ApplicationID string
	IdentityValue string
	PayloadType   string
	PayloadID     string
	WalletUserID  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PendingRequest records an outstanding payload's expected identity/origin
// linkage until the platform webhook arrives or the entry is proven stale.
type PendingRequest struct {
	ID            uuid.UUID `json:"id"`
	ApplicationID string    `json:"application_id"`
	Origin        string    `json:"origin"`
	Referrer      string    `json:"referrer"`
	FrontendID    string    `json:"frontend_id"`
	WalletUserID  string    `json:"wallet_user_id,omitempty"`
	PayloadID     string    `json:"payload_id"`
	// SignInToValidate marks a sign-in issued in place of a payment; its
	// ownership belongs in the payment bucket once resolved.
	SignInToValidate bool      `json:"signin_to_validate,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// PayloadMeta is the platform's view of payload disposition.
type PayloadMeta struct {
	Exists   bool
	Resolved bool
	Signed   bool
	Submit   bool
	Expired  bool
}

// PayloadRequest is what was originally asked of the signer.
// RequestedAmount keeps the platform's wire form: a bare number means native
// drops, an object means an issued currency triple.
type PayloadRequest struct {
	TxType                  string
	RequestedDestination    string
	RequestedDestinationTag *uint32
	RequestedAmount         json.RawMessage
	CustomIdentifier        string
	ExpiresAt               time.Time
}

// PayloadResponse is the signer's outcome for a resolved payload.
// ResolvedAt stays a raw string: an unparseable timestamp must count as
// already expired, so parsing is deferred to the window check.
type PayloadResponse struct {
	Account          string
	TxID             string
	SignedBlobHex    string
	DispatchedResult string
	ResolvedAt       string
}

// PayloadApplication carries the wallet-issued user linkage for the tenant.
type PayloadApplication struct {
	ID              string
	IssuedUserToken string
}

// PayloadDetails is the full payload state as fetched from the platform.
type PayloadDetails struct {
	Meta        PayloadMeta
	Payload     PayloadRequest
	Response    PayloadResponse
	Application PayloadApplication
}

// NormalizePayloadType maps a type tag onto its ownership bucket: blank
// collapses into the catch-all, everything else is lowercased so the
// platform's capitalized transaction types ("Payment", "SignIn") land in the
// same bucket the checks query.
func NormalizePayloadType(payloadType string) string {
	payloadType = strings.ToLower(strings.TrimSpace(payloadType))
	if payloadType == "" {
		return PayloadTypeAny
	}
	return payloadType
}
