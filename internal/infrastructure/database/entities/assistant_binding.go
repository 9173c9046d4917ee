package entities

import "time"

// AssistantBinding maps a voice assistant id to the tenant that provisioned it.
type AssistantBinding struct {
	AssistantID  string `gorm:"type:varchar(255);primaryKey"`
	TenantDomain string `gorm:"type:varchar(255);not null;index:idx_assistant_bindings_tenant_domain"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (AssistantBinding) TableName() string {
	return "assistant_bindings"
}
