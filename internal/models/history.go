package models

import "time"

// Project history / audit trail
type ProjectHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"projectId"`
	UserID    uint      `json:"userId"` // qui a fait la modification
	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Action    string    `gorm:"not null" json:"action"` // ex: "create", "update", "status_change", "add_kits"
	Field     string    `json:"field,omitempty"`        // champ modifié (optionnel)
	OldValue  string    `json:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
