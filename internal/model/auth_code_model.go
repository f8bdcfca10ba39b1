package model

// AuthCode is a single-use authorization code minted by the consent flow
// and redeemed exactly once at the token endpoint.
type AuthCode struct {
	Code      string `gorm:"column:code;primaryKey"`
	UID       string `gorm:"column:uid;not null"`
	ListID    string `gorm:"column:list_id;not null"`
	ClientID  string `gorm:"column:client_id;not null"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
	ExpiresAt int64  `gorm:"column:expires_at;not null"`
}

func (AuthCode) TableName() string {
	return "auth_codes"
}
