package models

import "time"

// User & auth related models
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // hashé (bcrypt)
	Nom       string    `gorm:"index" json:"nom"`
	Prenom    string    `gorm:"index" json:"prenom"`
	ImageURL  string    `json:"imageUrl"` // avatar (optionnel)
	RoleID    uint      `json:"roleId"`   // clé étrangère vers Role
	Role      Role      `gorm:"foreignKey:RoleID" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Role struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"` // ADMIN, DEV, USER
	Description string    `json:"description,omitempty"`       // optionnel
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Role names seeded at startup. ADMIN manages everything, DEV manages the
// catalog (products/kits), USER owns projects.
const (
	RoleAdmin = "ADMIN"
	RoleDev   = "DEV"
	RoleUser  = "USER"
)
