package model

// Sources recorded on items for the client UI.

const ItemSourceAlexa = "alexa"

type ListItem struct {
	ID        string `gorm:"column:id;primaryKey"`
	ListID    string `gorm:"column:list_id;not null;index"`
	Name      string `gorm:"column:name;not null"`
	Completed bool   `gorm:"column:completed;default:false"`
	CreatedAt int64  `gorm:"column:created_at;not null"`
	CreatedBy string `gorm:"column:created_by"`
	Source    string `gorm:"column:source"`
}

func (ListItem) TableName() string {
	return "list_items"
}
