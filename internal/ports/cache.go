package ports

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

// PendingRequestStore keeps outstanding payload linkage records between
// submission and webhook resolution. Entries have no automatic TTL; the
// cleanup worker is the only deleter besides webhook resolution, because a
// record must never vanish while its payload could still resolve.
type PendingRequestStore interface {
	Put(ctx context.Context, pending domain.PendingRequest) error
	Get(ctx context.Context, applicationID, payloadID string) (*domain.PendingRequest, error)
	Delete(ctx context.Context, applicationID, payloadID string) error
	List(ctx context.Context) ([]domain.PendingRequest, error)
}

// PolicyCache is the explicitly-owned tenant policy cache. Reads are lazy and
// process-wide; Invalidate drops everything rather than updating in place,
// trading freshness for read latency.
type PolicyCache interface {
	GetByOriginAndApplication(ctx context.Context, origin, applicationID string) (*domain.OriginPolicy, error)
	GetByApplication(ctx context.Context, applicationID string) (*domain.OriginPolicy, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.OriginPolicy, error)
	Invalidate()
}
