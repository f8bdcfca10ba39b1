package model

// RefreshToken is the long-lived credential behind the refresh grant. The
// token value is stable across refreshes; only LastRefreshedAt moves.
type RefreshToken struct {
	Token           string `gorm:"column:token;primaryKey"`
	UID             string `gorm:"column:uid;not null"`
	ListID          string `gorm:"column:list_id;not null"`
	ClientID        string `gorm:"column:client_id;not null"`
	CreatedAt       int64  `gorm:"column:created_at;not null"`
	ExpiresAt       int64  `gorm:"column:expires_at;not null"`
	LastRefreshedAt int64  `gorm:"column:last_refreshed_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
