package postgres

import (
	"encoding/json"

	"github.com/nixer89/xrpl-services-backend/internal/domain"
)

func toDomainOwnership(m ownershipModel) domain.OwnershipRecord {
	return domain.OwnershipRecord{
		Space:         domain.IdentitySpace(m.Space),
		Origin:        m.Origin,
		Referrer:      m.Referrer,
		ApplicationID: m.ApplicationID,
		IdentityValue: m.IdentityValue,
		PayloadType:   m.PayloadType,
		PayloadID:     m.PayloadID,
		WalletUserID:  m.WalletUserID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toDomainPolicy(m originPolicyModel) (*domain.OriginPolicy, error) {
	policy := &domain.OriginPolicy{
		ApplicationID: m.ApplicationID,
		Origin:        m.Origin,
		APIKey:        m.APIKey,
		APISecret:     m.APISecret,
		WebhookSecret: m.WebhookSecret,
	}
	if err := unmarshalColumn(m.AllowedOrigins, &policy.AllowedOrigins); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(m.Destinations, &policy.Destinations); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(m.FixedAmounts, &policy.FixedAmounts); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(m.ValidationWindows, &policy.ValidationWindows); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(m.ReturnURLs, &policy.ReturnURLs); err != nil {
		return nil, err
	}
	return policy, nil
}

func unmarshalColumn(raw string, target any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), target)
}
