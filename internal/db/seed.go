package db

import (
	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

func fp(v float64) *float64 { return &v }

// SeedRoles ensures the three fixed roles exist. Idempotent.
func SeedRoles(db *gorm.DB) error {
	baseRoles := []models.Role{
		{Name: models.RoleAdmin, Description: "Administration complète"},
		{Name: models.RoleDev, Description: "Gestion du catalogue produits et kits"},
		{Name: models.RoleUser, Description: "Gestion de ses propres projets"},
	}
	for _, r := range baseRoles {
		var existing models.Role
		if err := db.Where("name = ?", r.Name).First(&existing).Error; err == gorm.ErrRecordNotFound {
			if err := db.Create(&r).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// seedCatalog inserts a handful of demo products for development. Idempotent.
func seedCatalog(db *gorm.DB) {
	var admin models.User
	if err := db.Joins("Role").Where("\"Role\".name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		// no admin yet: catalog seeding waits for the first signup
		return
	}
	baseProducts := []models.Product{
		{
			UserID: admin.ID, Nom: "Module bureau 15m²", Reference: "MOD-B15",
			PrixAchatAchat: fp(4500), PrixVenteAchat: fp(6900),
			PrixAchatLocation1An: fp(120), PrixVenteLocation1An: fp(190),
			PrixAchatLocation2Ans: fp(100), PrixVenteLocation2Ans: fp(160),
			PrixAchatLocation3Ans: fp(85), PrixVenteLocation3Ans: fp(140),
			RechauffementClimatiqueAchat:    fp(1250),
			RechauffementClimatiqueLocation: fp(-870),
			SurfaceM2:                       fp(15),
		},
		{
			UserID: admin.ID, Nom: "Cloison amovible", Reference: "CLO-AMO",
			PrixAchatAchat: fp(180), PrixVenteAchat: fp(290),
			PrixAchatLocation1An: fp(6), PrixVenteLocation1An: fp(11),
			RechauffementClimatiqueLocation: fp(-42),
			SurfaceM2:                       fp(0),
		},
	}
	for _, p := range baseProducts {
		var existing models.Product
		if err := db.Where("reference = ?", p.Reference).First(&existing).Error; err == gorm.ErrRecordNotFound {
			db.Create(&p)
		}
	}
}
