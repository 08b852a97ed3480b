package entity

// Note only exists inside its owner's collection, it is never updated in place.
type Note struct {
	ID        string `gorm:"primaryKey"`
	OwnerID   int64  `gorm:"not null;index"` // References: users(id)
	Title     string `gorm:"not null"`
	Content   string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:false"`
}
