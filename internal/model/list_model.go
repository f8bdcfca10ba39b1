package model

// List is the shared shopping list. Members and member profiles are stored
// as JSON text, mirroring how the realtime clients shape the document.
type List struct {
	ID             string `gorm:"column:id;primaryKey"`
	Name           string `gorm:"column:name;not null"`
	Members        string `gorm:"column:members"`         // JSON array of uids
	MemberProfiles string `gorm:"column:member_profiles"` // JSON object uid -> display name
	UpdatedAt      int64  `gorm:"column:updated_at"`
}

func (List) TableName() string {
	return "lists"
}
