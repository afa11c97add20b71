package ports

import (
	"context"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// OwnershipWriteParams captures one ownership upsert. The optional wallet
// user id is stored alongside so identity resolution can work from any space.
type OwnershipWriteParams struct {
	Space         domain.IdentitySpace
	Origin        string
	Referrer      string
	ApplicationID string
	IdentityValue string
	PayloadType   string
	PayloadID     string
	WalletUserID  string
	WrittenAt     time.Time
}

// OwnershipQuery selects payload ids for an identity. Empty Origin/Referrer
// aggregate across all records for the identity.
type OwnershipQuery struct {
	Space         domain.IdentitySpace
	Origin        string
	Referrer      string
	ApplicationID string
	IdentityValue string
	PayloadType   string
}

// OwnershipRepository persists the multi-space ownership index.
// Record must be idempotent: re-adding an existing payload id is a no-op
// that still refreshes the record's updated timestamp.
type OwnershipRepository interface {
	Record(ctx context.Context, params OwnershipWriteParams) error
	ListPayloadIDs(ctx context.Context, q OwnershipQuery) ([]string, error)
	// ListRecent returns records for an identity ordered newest-first,
	// used by most-recent-wins identity resolution.
	ListRecent(ctx context.Context, space domain.IdentitySpace, applicationID, identityValue, payloadType string, limit int) ([]domain.OwnershipRecord, error)
}

// AccountMappingRepository holds the direct account-to-wallet-user fallback
// populated by payment payloads that arrive without a sign-in.
type AccountMappingRepository interface {
	Upsert(ctx context.Context, applicationID, account, walletUserID string, at time.Time) error
	Lookup(ctx context.Context, applicationID, account string) (string, error)
}

// PolicyRepository loads tenant origin policies from durable storage.
type PolicyRepository interface {
	GetByOriginAndApplication(ctx context.Context, origin, applicationID string) (*domain.OriginPolicy, error)
	GetByApplication(ctx context.Context, applicationID string) (*domain.OriginPolicy, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.OriginPolicy, error)
}
