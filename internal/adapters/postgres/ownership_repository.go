package postgres

import (
	"context"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"github.com/nixer89/xrpl-services-backend/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ownershipRepository struct {
	db *gorm.DB
}

// Record upserts one (identity, payload) membership row. The unique index
// carries the set semantics: a duplicate add only refreshes updated_at. A
// wallet user id learned later never erases an earlier one with an empty
// value.
func (r *ownershipRepository) Record(ctx context.Context, params ports.OwnershipWriteParams) error {
	rec := ownershipModel{
		Space:         string(params.Space),
		Origin:        params.Origin,
		Referrer:      params.Referrer,
		ApplicationID: params.ApplicationID,
		IdentityValue: params.IdentityValue,
		PayloadType:   params.PayloadType,
		PayloadID:     params.PayloadID,
		WalletUserID:  params.WalletUserID,
		CreatedAt:     params.WrittenAt,
		UpdatedAt:     params.WrittenAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "space"}, {Name: "origin"}, {Name: "referrer"},
			{Name: "application_id"}, {Name: "identity_value"},
			{Name: "payload_type"}, {Name: "payload_id"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"updated_at":     params.WrittenAt,
			"wallet_user_id": gorm.Expr("COALESCE(NULLIF(EXCLUDED.wallet_user_id, ''), ownership_records.wallet_user_id)"),
		}),
	}).Create(&rec).Error
}

func (r *ownershipRepository) ListPayloadIDs(ctx context.Context, q ports.OwnershipQuery) ([]string, error) {
	query := r.db.WithContext(ctx).
		Model(&ownershipModel{}).
		Distinct("payload_id").
		Where("space = ?", string(q.Space)).
		Where("application_id = ?", q.ApplicationID).
		Where("identity_value = ?", q.IdentityValue).
		Where("payload_type = ?", q.PayloadType)
	if q.Origin != "" {
		query = query.Where("origin = ?", q.Origin)
	}
	if q.Referrer != "" {
		query = query.Where("referrer = ?", q.Referrer)
	}

	var ids []string
	if err := query.Pluck("payload_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ownershipRepository) ListRecent(ctx context.Context, space domain.IdentitySpace, applicationID, identityValue, payloadType string, limit int) ([]domain.OwnershipRecord, error) {
	query := r.db.WithContext(ctx).
		Where("space = ?", string(space)).
		Where("application_id = ?", applicationID).
		Where("identity_value = ?", identityValue).
		Order("updated_at DESC").
		Limit(limit)
	if payloadType != "" {
		query = query.Where("payload_type = ?", payloadType)
	}

	var rows []ownershipModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.OwnershipRecord, 0, len(rows))
	for _, item := range rows {
		result = append(result, toDomainOwnership(item))
	}
	return result, nil
}
