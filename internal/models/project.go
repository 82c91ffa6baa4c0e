package models

import "time"

// Project models.
//
// Les totaux dérivés (prix, impact, surface) sont calculés à la lecture et ne
// sont jamais persistés.
type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"userId"` // propriétaire
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	Nom         string `gorm:"not null;index" json:"nom"`
	Description string `json:"description,omitempty"`
	Status      string `gorm:"not null;default:'ACTIF'" json:"status"` // ACTIF, EN_PAUSE, TERMINE, ARCHIVE
	// Surcharge manuelle de la surface dérivée (optionnelle)
	SurfaceM2   *float64     `json:"surfaceM2,omitempty"`
	ProjectKits []ProjectKit `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"projectKits"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Statuts autorisés pour un projet.
const (
	StatusActif   = "ACTIF"
	StatusEnPause = "EN_PAUSE"
	StatusTermine = "TERMINE"
	StatusArchive = "ARCHIVE"
)

// ValidStatus reports whether s is one of the allowed project statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActif, StatusEnPause, StatusTermine, StatusArchive:
		return true
	}
	return false
}

// ProjectKit lie un projet à un kit avec une quantité.
// L'opération "ajouter des kits" accumule la quantité dans la ligne existante
// au lieu de créer un doublon.
type ProjectKit struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:idx_project_kit,unique,priority:1" json:"projectId"`
	KitID     uint      `gorm:"not null;index:idx_project_kit,unique,priority:2" json:"kitId"`
	Quantite  int       `gorm:"not null;default:1" json:"quantite"`
	Kit       *Kit      `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE" json:"kit,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetUserID implements policy.Ownable.
func (p Project) GetUserID() uint { return p.UserID }
