package application

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
)

// RecordOwnership adds a payload id to the identity's set for the payload
// type, upserting the record and refreshing its updated timestamp. Adding the
// same id twice leaves the set unchanged.
func (s *Service) RecordOwnership(ctx context.Context, params ports.OwnershipWriteParams) error {
	params.PayloadType = domain.NormalizePayloadType(params.PayloadType)
	if params.WrittenAt.IsZero() {
		params.WrittenAt = s.nowFn()
	}
	if err := s.ownership.Record(ctx, params); err != nil {
		s.logger.ErrorContext(ctx, "ownership write failed",
			"module", "application",
			"operation", "record_ownership",
			"outcome", "failure",
			"space", string(params.Space),
			"application_id", params.ApplicationID,
			"payload_type", params.PayloadType,
			"error", err,
		)
		return err
	}
	return nil
}

// QueryOwnership returns the payload ids the identity owns for a type. When
// the referrer is empty, records are aggregated across all referrers for the
// identity. Storage errors are swallowed and surfaced as an empty set so that
// ownership reads never fail a caller; availability wins over strictness
// here and that behavior must be preserved.
func (s *Service) QueryOwnership(ctx context.Context, q ports.OwnershipQuery) []string {
	q.PayloadType = domain.NormalizePayloadType(q.PayloadType)
	ids, err := s.ownership.ListPayloadIDs(ctx, q)
	if err != nil {
		s.logger.WarnContext(ctx, "ownership query failed, treating as empty",
			"module", "application",
			"operation", "query_ownership",
			"outcome", "failure",
			"space", string(q.Space),
			"application_id", q.ApplicationID,
			"error", err,
		)
		return nil
	}
	return ids
}

// IsOwner reports whether the identity owns the payload id.
func (s *Service) IsOwner(ctx context.Context, q ports.OwnershipQuery, payloadID string) bool {
	for _, id := range s.QueryOwnership(ctx, q) {
		if id == payloadID {
			return true
		}
	}
	return false
}
