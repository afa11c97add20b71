package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountMappingRepository struct {
	db *gorm.DB
}

func (r *accountMappingRepository) Upsert(ctx context.Context, applicationID, account, walletUserID string, at time.Time) error {
	rec := accountMappingModel{
		ApplicationID: applicationID,
		Account:       account,
		WalletUserID:  walletUserID,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "application_id"}, {Name: "account"}},
		DoUpdates: clause.Assignments(map[string]any{
			"wallet_user_id": walletUserID,
			"updated_at":     at,
		}),
	}).Create(&rec).Error
}

func (r *accountMappingRepository) Lookup(ctx context.Context, applicationID, account string) (string, error) {
	var rec accountMappingModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Where("account = ?", account).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return rec.WalletUserID, nil
}
