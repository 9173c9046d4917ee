package entities

import "time"

// Session models the persisted representation of a tenant credential.
type Session struct {
	ID           string     `gorm:"type:varchar(255);primaryKey"`
	TenantDomain string     `gorm:"type:varchar(255);not null;index:idx_sessions_tenant_domain"`
	IsOnline     bool       `gorm:"not null;default:false"`
	UserID       string     `gorm:"type:varchar(255)"`
	Scope        string     `gorm:"type:text"`
	AccessToken  string     `gorm:"type:text;not null"`
	ExpiresAt    *time.Time `gorm:"index:idx_sessions_expires_at"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Session) TableName() string {
	return "sessions"
}
