package models

import "time"

// Kit bundle models.
//
// Un kit est un ensemble nommé de produits. Son prix et son impact ne sont
// jamais stockés : ils sont toujours dérivés de ses lignes produit.
type Kit struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"userId"` // créateur
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	Nom         string `gorm:"not null;index" json:"nom"`
	Style       string `gorm:"index" json:"style"`
	Description string `json:"description,omitempty"`
	// Surcharge manuelle de la surface dérivée (optionnelle)
	SurfaceM2   *float64     `json:"surfaceM2,omitempty"`
	KitProducts []KitProduct `gorm:"foreignKey:KitID;constraint:OnDelete:CASCADE" json:"kitProducts"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// KitProduct lie un kit à un produit avec une quantité.
// Un produit n'apparaît qu'une fois par kit : les doublons sont fusionnés en
// additionnant les quantités avant persistance.
type KitProduct struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	KitID     uint      `gorm:"not null;index:idx_kit_product,unique,priority:1" json:"kitId"`
	ProductID uint      `gorm:"not null;index:idx_kit_product,unique,priority:2" json:"productId"`
	Quantite  int       `gorm:"not null;default:1" json:"quantite"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetUserID implements policy.Ownable.
func (k Kit) GetUserID() uint { return k.UserID }
