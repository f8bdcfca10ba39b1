package model

// Invite statuses

const (
	InviteStatusActive  = "active"
	InviteStatusUsed    = "used"
	InviteStatusExpired = "expired"
)

// Invite grants list membership to whoever redeems it. Expired invites are
// retained for a configurable window before the cleanup job deletes them.
type Invite struct {
	Code      string `gorm:"column:code;primaryKey"`
	ListID    string `gorm:"column:list_id;not null"`
	Status    string `gorm:"column:status;not null"`
	CreatedBy string `gorm:"column:created_by"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
	ExpiresAt int64  `gorm:"column:expires_at;not null"`
	ExpiredAt int64  `gorm:"column:expired_at"`
	UsedBy    string `gorm:"column:used_by"`
	UsedAt    int64  `gorm:"column:used_at"`
}

func (Invite) TableName() string {
	return "invites"
}
