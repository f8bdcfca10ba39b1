package model

// Reason recorded when a recovery key is disabled because its list is gone.

const RecoveryDisabledListNotFound = "list-not-found"

// RecoveryKey lets a new device instance reclaim membership in a list. It
// is keyed by the sha256 hex digest of the secret, never the plaintext.
type RecoveryKey struct {
	KeyHash          string `gorm:"column:key_hash;primaryKey"`
	ListID           string `gorm:"column:list_id;not null"`
	LastRegisteredBy string `gorm:"column:last_registered_by"`
	LastRegisteredAt int64  `gorm:"column:last_registered_at"`
	CreatedAt        int64  `gorm:"column:created_at;not null"`
	Disabled         bool   `gorm:"column:disabled;default:false"`
	DisabledReason   string `gorm:"column:disabled_reason"`
	LastClaimedBy    string `gorm:"column:last_claimed_by"`
	LastClaimedAt    int64  `gorm:"column:last_claimed_at"`
}

func (RecoveryKey) TableName() string {
	return "recovery_keys"
}
