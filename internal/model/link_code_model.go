package model

// Link code statuses

const (
	LinkCodeStatusPending  = "pending"
	LinkCodeStatusConsumed = "consumed"
	LinkCodeStatusExpired  = "expired"
)

// LinkCode is a short human-typable code binding a voice-assistant linking
// session to a list. Timestamps are epoch milliseconds.
type LinkCode struct {
	Code               string `gorm:"column:code;primaryKey"`
	UID                string `gorm:"column:uid;not null"`
	ListID             string `gorm:"column:list_id;not null"`
	Status             string `gorm:"column:status;not null"`
	ConsumedByClientID string `gorm:"column:consumed_by_client_id"`
	ConsumedAt         int64  `gorm:"column:consumed_at"`
	ExpiredAt          int64  `gorm:"column:expired_at"`
	CreatedAt          int64  `gorm:"column:created_at;not null"`
	ExpiresAt          int64  `gorm:"column:expires_at;not null"`
}

func (LinkCode) TableName() string {
	return "link_codes"
}
