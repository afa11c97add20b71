package postgres

import (
	"github.com/nixer89/xrpl-services-backend/internal/ports"
	"gorm.io/gorm"
)

// Repositories bundles the gorm-backed repository implementations so the
// bootstrap can wire them in one step.
type Repositories struct {
	Ownership ports.OwnershipRepository
	Accounts  ports.AccountMappingRepository
	Policies  ports.PolicyRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Ownership: &ownershipRepository{db: db},
		Accounts:  &accountMappingRepository{db: db},
		Policies:  &policyRepository{db: db},
	}
}
