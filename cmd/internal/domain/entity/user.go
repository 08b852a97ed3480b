package entity

// User is the identity and credential root; it exclusively owns its notes.
type User struct {
	ID               int64  `gorm:"primaryKey;autoIncrement:false"`
	Username         string `gorm:"not null;uniqueIndex"`
	Email            string `gorm:"not null;uniqueIndex"`
	Password         string `gorm:"not null"` // bcrypt hash
	VerifyCode       string `gorm:"not null"`
	VerifyCodeExpiry int64  `gorm:"not null"`
	IsVerified       bool   `gorm:"not null;default:false;index"`
	CreatedAt        int64  `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        int64  `gorm:"not null;autoUpdateTime:false"`

	// Relations
	Notes []Note `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// VerificationPending reports whether the user still holds an unexpired code at 'now' (millis).
func (u *User) VerificationPending(now int64) bool {
	return !u.IsVerified && u.VerifyCodeExpiry > now
}
