package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/pricing"
)

// ProjectService loads projects deep enough for the pricing aggregators and
// assembles their derived totals. The aggregation itself lives in the pure
// pricing package; this service only does I/O and shaping.
type ProjectService struct{ DB *gorm.DB }

func NewProjectService(db *gorm.DB) *ProjectService { return &ProjectService{DB: db} }

var ErrProjectNotFound = errors.New("project_not_found")

// Load fetches a project with kits and products preloaded (two levels deep,
// as the aggregators expect).
func (s *ProjectService) Load(id uint) (*models.Project, error) {
	var project models.Project
	err := s.DB.
		Preload("ProjectKits.Kit.KitProducts.Product").
		First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Totals is the derived block embedded in project GET responses, computed
// with the route's fixed default mode/period (achat, 1an).
type Totals struct {
	TotalPrix    float64           `json:"totalPrix"`
	TotalImpact  pricing.KitImpact `json:"totalImpact"`
	TotalSurface float64           `json:"totalSurface"`
}

// ComputeTotals derives the default-mode totals of a loaded project.
// The manual surface override wins over the derived surface when set.
func (s *ProjectService) ComputeTotals(project *models.Project) Totals {
	var t Totals
	if project == nil {
		return t
	}
	for _, pk := range project.ProjectKits {
		if pk.Kit == nil {
			continue
		}
		q := float64(pk.Quantite)
		t.TotalPrix += pricing.CalculateKitPrice(pk.Kit.KitProducts, pricing.ModeAchat, pricing.Period1An) * q
		imp := pricing.CalculateKitImpact(pk.Kit.KitProducts, pricing.ModeAchat)
		t.TotalImpact.RechauffementClimatique += imp.RechauffementClimatique * q
		t.TotalImpact.EpuisementRessources += imp.EpuisementRessources * q
		t.TotalImpact.Acidification += imp.Acidification * q
		t.TotalImpact.Eutrophisation += imp.Eutrophisation * q
		surface := imp.Surface
		if pk.Kit.SurfaceM2 != nil {
			surface = *pk.Kit.SurfaceM2
		}
		t.TotalImpact.Surface += surface * q
	}
	if project.SurfaceM2 != nil {
		t.TotalSurface = *project.SurfaceM2
	} else {
		t.TotalSurface = t.TotalImpact.Surface
	}
	return t
}

// Summary groups every derived figure the frontend and the PDF need.
type Summary struct {
	PriceTotals   pricing.ProjectPriceTotals      `json:"priceTotals"`
	PurchaseCosts pricing.ProjectCosts            `json:"purchaseCosts"`
	RentalCosts   map[string]pricing.ProjectCosts `json:"rentalCosts"`
	KitBreakdown  []pricing.KitBreakdownItem      `json:"kitBreakdown"`
	Savings       pricing.Impact                  `json:"environmentalSavings"`
	BreakEven     *float64                        `json:"breakEvenPoint"`
}

// Summarize computes the full project summary: all four price totals,
// cost/margin per mode, the purchase-mode kit breakdown, environmental
// savings, and the purchase-vs-rental break-even point.
func (s *ProjectService) Summarize(project *models.Project) Summary {
	return Summary{
		PriceTotals:   pricing.CalculateProjectPriceTotals(project),
		PurchaseCosts: pricing.CalculateProjectPurchaseCosts(project),
		RentalCosts: map[string]pricing.ProjectCosts{
			string(pricing.Period1An):  pricing.CalculateProjectRentalCosts(project, pricing.Period1An),
			string(pricing.Period2Ans): pricing.CalculateProjectRentalCosts(project, pricing.Period2Ans),
			string(pricing.Period3Ans): pricing.CalculateProjectRentalCosts(project, pricing.Period3Ans),
		},
		KitBreakdown: pricing.GetProjectKitBreakdown(project, pricing.ModeAchat, pricing.Period1An),
		Savings:      pricing.CalculateEnvironmentalSavings(project),
		BreakEven:    pricing.CalculateBreakEvenPoint(project),
	}
}

// KitLine is one (kit, quantity) entry of an add-kits request.
type KitLine struct {
	KitID    uint `json:"kitId"`
	Quantite int  `json:"quantite"`
}

// AddKits attaches kits to a project. When a project already references a
// kit, the quantity accumulates into the existing row instead of creating a
// duplicate.
func (s *ProjectService) AddKits(projectID uint, lines []KitLine) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, line := range MergeKitLines(lines) {
			var existing models.ProjectKit
			err := tx.Where("project_id = ? AND kit_id = ?", projectID, line.KitID).First(&existing).Error
			switch {
			case err == nil:
				existing.Quantite += line.Quantite
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				pk := models.ProjectKit{ProjectID: projectID, KitID: line.KitID, Quantite: line.Quantite}
				if err := tx.Create(&pk).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}

// MergeKitLines collapses duplicate kit ids by summing quantities, keeping
// first-seen order.
func MergeKitLines(lines []KitLine) []KitLine {
	merged := make([]KitLine, 0, len(lines))
	index := map[uint]int{}
	for _, l := range lines {
		if i, ok := index[l.KitID]; ok {
			merged[i].Quantite += l.Quantite
			continue
		}
		index[l.KitID] = len(merged)
		merged = append(merged, l)
	}
	return merged
}
