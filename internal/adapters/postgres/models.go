package postgres

import (
	"time"

	"github.com/google/uuid"
)

type ownershipModel struct {
	RecordID      uuid.UUID `gorm:"column:record_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Space         string    `gorm:"column:space"`
	Origin        string    `gorm:"column:origin"`
	Referrer      string    `gorm:"column:referrer"`
	ApplicationID string    `gorm:"column:application_id"`
	IdentityValue string    `gorm:"column:identity_value"`
	PayloadType   string    `gorm:"column:payload_type"`
	PayloadID     string    `gorm:"column:payload_id"`
	WalletUserID  string    `gorm:"column:wallet_user_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ownershipModel) TableName() string { return "ownership_records" }

type accountMappingModel struct {
	MappingID     uuid.UUID `gorm:"column:mapping_id;type:uuid;default:gen_random_uuid();primaryKey"`
	ApplicationID string    `gorm:"column:application_id"`
	Account       string    `gorm:"column:account"`
	WalletUserID  string    `gorm:"column:wallet_user_id"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (accountMappingModel) TableName() string { return "account_mappings" }

type originPolicyModel struct {
	PolicyID          uuid.UUID `gorm:"column:policy_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Origin            string    `gorm:"column:origin"`
	ApplicationID     string    `gorm:"column:application_id"`
	AllowedOrigins    string    `gorm:"column:allowed_origins;type:jsonb"`
	Destinations      string    `gorm:"column:destinations;type:jsonb"`
	FixedAmounts      string    `gorm:"column:fixed_amounts;type:jsonb"`
	ValidationWindows string    `gorm:"column:validation_windows;type:jsonb"`
	ReturnURLs        string    `gorm:"column:return_urls;type:jsonb"`
	APIKey            string    `gorm:"column:api_key"`
	APISecret         string    `gorm:"column:api_secret"`
	WebhookSecret     string    `gorm:"column:webhook_secret"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (originPolicyModel) TableName() string { return "origin_policies" }
