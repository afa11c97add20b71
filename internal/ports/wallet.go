package ports

import (
	"context"
	"encoding/json"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// PlatformCredentials authenticate one tenant against the signing platform.
type PlatformCredentials struct {
	APIKey    string
	APISecret string
}

// PayloadSubmission is the opaque request forwarded to the signing platform,
// plus the few fields this service reads or rewrites before forwarding.
type PayloadSubmission struct {
	TxJSON           json.RawMessage
	TxType           string
	UserToken        string
	CustomIdentifier string
	ReturnURLApp     string
	ReturnURLWeb     string
	PushDisabled     bool
}

// PayloadCreated is the platform's acknowledgement of a submitted payload.
type PayloadCreated struct {
	PayloadID  string
	NextAlways string
	NextNoPush string
	QRPNG      string
}

// WalletPlatformClient is the opaque request/response boundary to the signing
// platform. It carries no invariants of its own; payload state fetched here
// is re-verified by the core before anything is trusted.
type WalletPlatformClient interface {
	Submit(ctx context.Context, creds PlatformCredentials, sub PayloadSubmission) (PayloadCreated, error)
	Get(ctx context.Context, creds PlatformCredentials, payloadID string) (domain.PayloadDetails, error)
	GetByCustomIdentifier(ctx context.Context, creds PlatformCredentials, customIdentifier string) (domain.PayloadDetails, error)
	Delete(ctx context.Context, creds PlatformCredentials, payloadID string) error
}
