package models

import (
	"time"

	"gorm.io/gorm"
)

// Product catalog models.
//
// Chaque produit porte des prix indépendants par combinaison (mode, période) :
//   - achat : un seul jeu de prix (pas de variante 1/2/3 ans)
//   - location : un triplet par durée d'engagement, montants MENSUELS
//
// Les champs sans suffixe (PrixAchat1An, ...) sont hérités de l'ancien schéma
// et servent de repli quand le champ spécifique au mode est absent.
// Tous les montants sont nullable : nil signifie "non renseigné", pas zéro.
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"userId"` // créateur
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	Nom         string `gorm:"not null;index" json:"nom"`
	Reference   string `gorm:"size:40;index" json:"reference"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`

	// Prix mode achat (période unique)
	PrixAchatAchat    *float64 `json:"prixAchatAchat,omitempty"` // coût fournisseur
	PrixUnitaireAchat *float64 `json:"prixUnitaireAchat,omitempty"`
	PrixVenteAchat    *float64 `json:"prixVenteAchat,omitempty"` // prix de vente

	// Prix mode location, montants mensuels par durée d'engagement
	PrixAchatLocation1An     *float64 `json:"prixAchatLocation1An,omitempty"`
	PrixAchatLocation2Ans    *float64 `json:"prixAchatLocation2Ans,omitempty"`
	PrixAchatLocation3Ans    *float64 `json:"prixAchatLocation3Ans,omitempty"`
	PrixUnitaireLocation1An  *float64 `json:"prixUnitaireLocation1An,omitempty"`
	PrixUnitaireLocation2Ans *float64 `json:"prixUnitaireLocation2Ans,omitempty"`
	PrixUnitaireLocation3Ans *float64 `json:"prixUnitaireLocation3Ans,omitempty"`
	PrixVenteLocation1An     *float64 `json:"prixVenteLocation1An,omitempty"`
	PrixVenteLocation2Ans    *float64 `json:"prixVenteLocation2Ans,omitempty"`
	PrixVenteLocation3Ans    *float64 `json:"prixVenteLocation3Ans,omitempty"`

	// Champs hérités (ancien schéma, sans suffixe de mode) — repli
	PrixAchat1An    *float64 `json:"prixAchat1An,omitempty"`
	PrixUnitaire1An *float64 `json:"prixUnitaire1An,omitempty"`
	PrixVente1An    *float64 `json:"prixVente1An,omitempty"`

	// Impact environnemental, par mode. Les valeurs location représentent une
	// économie par rapport à l'achat neuf et peuvent être stockées négatives.
	RechauffementClimatiqueAchat    *float64 `json:"rechauffementClimatiqueAchat,omitempty"`
	EpuisementRessourcesAchat       *float64 `json:"epuisementRessourcesAchat,omitempty"`
	AcidificationAchat              *float64 `json:"acidificationAchat,omitempty"`
	EutrophisationAchat             *float64 `json:"eutrophisationAchat,omitempty"`
	RechauffementClimatiqueLocation *float64 `json:"rechauffementClimatiqueLocation,omitempty"`
	EpuisementRessourcesLocation    *float64 `json:"epuisementRessourcesLocation,omitempty"`
	AcidificationLocation           *float64 `json:"acidificationLocation,omitempty"`
	EutrophisationLocation          *float64 `json:"eutrophisationLocation,omitempty"`

	// Impact hérité (sans suffixe de mode) — repli
	RechauffementClimatique *float64 `json:"rechauffementClimatique,omitempty"`
	EpuisementRessources    *float64 `json:"epuisementRessources,omitempty"`
	Acidification           *float64 `json:"acidification,omitempty"`
	Eutrophisation          *float64 `json:"eutrophisation,omitempty"`

	// Emprise au sol par unité, indépendante du mode
	SurfaceM2 *float64 `json:"surfaceM2,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// GetUserID implements policy.Ownable.
func (p Product) GetUserID() uint { return p.UserID }
