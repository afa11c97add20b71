package postgres

import (
	"context"
	"errors"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
	"gorm.io/gorm"
)

type policyRepository struct {
	db *gorm.DB
}

func (r *policyRepository) GetByOriginAndApplication(ctx context.Context, origin, applicationID string) (*domain.OriginPolicy, error) {
	var rec originPolicyModel
	err := r.db.WithContext(ctx).
		Where("origin = ?", origin).
		Where("application_id = ?", applicationID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainPolicy(rec)
}

func (r *policyRepository) GetByApplication(ctx context.Context, applicationID string) (*domain.OriginPolicy, error) {
	var rec originPolicyModel
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("updated_at DESC").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainPolicy(rec)
}

func (r *policyRepository) GetByAPIKey(ctx context.Context, apiKey string) (*domain.OriginPolicy, error) {
	var rec originPolicyModel
	err := r.db.WithContext(ctx).
		Where("api_key = ?", apiKey).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDomainPolicy(rec)
}
