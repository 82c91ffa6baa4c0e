package pricing

import (
	"math"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

// ProjectPriceTotals carries the project's sale-price totals for all four
// mode/period combinations at once.
type ProjectPriceTotals struct {
	Achat        float64 `json:"achat"`
	Location1An  float64 `json:"location1an"`
	Location2Ans float64 `json:"location2ans"`
	Location3Ans float64 `json:"location3ans"`
}

// ProjectCosts is a price/cost/margin breakdown for one mode/period.
type ProjectCosts struct {
	TotalPrice  float64 `json:"totalPrice"`
	TotalCost   float64 `json:"totalCost"`
	TotalMargin float64 `json:"totalMargin"`
}

// KitBreakdownItem is one project-kit line of the per-kit breakdown.
type KitBreakdownItem struct {
	KitName          string  `json:"kitName"`
	Quantity         int     `json:"quantity"`
	TotalPrice       float64 `json:"totalPrice"`
	TotalCost        float64 `json:"totalCost"`
	TotalMargin      float64 `json:"totalMargin"`
	MarginPercentage float64 `json:"marginPercentage"`
}

// Toute agrégation projet applique la cascade de quantités :
// quantité du produit dans le kit × quantité du kit dans le projet.
// Les lignes dont le kit ou ses produits sont absents sont ignorées.

// CalculateProjectPriceTotals computes the four sale-price totals in a single
// pass over the project's kits. A nil project or empty kit list yields the
// zero record.
func CalculateProjectPriceTotals(project *models.Project) ProjectPriceTotals {
	var out ProjectPriceTotals
	if project == nil {
		return out
	}
	for _, pk := range project.ProjectKits {
		if pk.Kit == nil {
			continue
		}
		for _, kp := range pk.Kit.KitProducts {
			if kp.Product == nil {
				continue
			}
			cascade := float64(kp.Quantite) * float64(pk.Quantite)
			out.Achat += val(ResolvePricing(kp.Product, ModeAchat, Period1An).PrixVente) * cascade
			out.Location1An += val(ResolvePricing(kp.Product, ModeLocation, Period1An).PrixVente) * cascade
			out.Location2Ans += val(ResolvePricing(kp.Product, ModeLocation, Period2Ans).PrixVente) * cascade
			out.Location3Ans += val(ResolvePricing(kp.Product, ModeLocation, Period3Ans).PrixVente) * cascade
		}
	}
	return out
}

func calculateProjectCosts(project *models.Project, mode Mode, period Period) ProjectCosts {
	var out ProjectCosts
	if project == nil {
		return out
	}
	for _, pk := range project.ProjectKits {
		if pk.Kit == nil {
			continue
		}
		for _, kp := range pk.Kit.KitProducts {
			if kp.Product == nil {
				continue
			}
			cascade := float64(kp.Quantite) * float64(pk.Quantite)
			res := ResolvePricing(kp.Product, mode, period)
			out.TotalPrice += val(res.PrixVente) * cascade
			out.TotalCost += val(res.PrixAchat) * cascade
		}
	}
	out.TotalMargin = out.TotalPrice - out.TotalCost
	return out
}

// CalculateProjectPurchaseCosts computes price, supplier cost and margin for
// the purchase track.
func CalculateProjectPurchaseCosts(project *models.Project) ProjectCosts {
	return calculateProjectCosts(project, ModeAchat, Period1An)
}

// CalculateProjectRentalCosts computes price, supplier cost and margin for the
// rental track at the given commitment period.
func CalculateProjectRentalCosts(project *models.Project, period Period) ProjectCosts {
	return calculateProjectCosts(project, ModeLocation, period)
}

// GetProjectKitBreakdown returns one item per project kit for the given
// mode/period, with the quantity cascade applied. Kits with no loaded product
// lines are filtered out of the result rather than zero-filled.
// MarginPercentage is 0 when the line's price is 0.
func GetProjectKitBreakdown(project *models.Project, mode Mode, period Period) []KitBreakdownItem {
	items := []KitBreakdownItem{}
	if project == nil {
		return items
	}
	for _, pk := range project.ProjectKits {
		if pk.Kit == nil || len(pk.Kit.KitProducts) == 0 {
			continue
		}
		var price, cost float64
		for _, kp := range pk.Kit.KitProducts {
			if kp.Product == nil {
				continue
			}
			cascade := float64(kp.Quantite) * float64(pk.Quantite)
			res := ResolvePricing(kp.Product, mode, period)
			price += val(res.PrixVente) * cascade
			cost += val(res.PrixAchat) * cascade
		}
		margin := price - cost
		pct := 0.0
		if price > 0 {
			pct = margin / price * 100
		}
		items = append(items, KitBreakdownItem{
			KitName:          pk.Kit.Nom,
			Quantity:         pk.Quantite,
			TotalPrice:       price,
			TotalCost:        cost,
			TotalMargin:      margin,
			MarginPercentage: pct,
		})
	}
	return items
}

// CalculateEnvironmentalSavings sums the rental-mode environmental impact of
// every product, absolute-valued, with the quantity cascade. Rental is the
// only meaningful "savings" framing, so the mode is fixed; stored rental
// values may be negative, hence the absolute value at this layer (and only
// this layer — CalculateKitImpact keeps the raw sign).
func CalculateEnvironmentalSavings(project *models.Project) Impact {
	var out Impact
	if project == nil {
		return out
	}
	for _, pk := range project.ProjectKits {
		if pk.Kit == nil {
			continue
		}
		for _, kp := range pk.Kit.KitProducts {
			if kp.Product == nil {
				continue
			}
			cascade := float64(kp.Quantite) * float64(pk.Quantite)
			imp := ResolveEnvironmentalImpact(kp.Product, ModeLocation)
			out.RechauffementClimatique += math.Abs(imp.RechauffementClimatique) * cascade
			out.EpuisementRessources += math.Abs(imp.EpuisementRessources) * cascade
			out.Acidification += math.Abs(imp.Acidification) * cascade
			out.Eutrophisation += math.Abs(imp.Eutrophisation) * cascade
		}
	}
	return out
}

// CalculateBreakEvenPoint returns how many years of rental at the 1-year rate
// equal the one-time purchase price, or nil when no rental price exists
// (an undefined break-even, not an instant one).
func CalculateBreakEvenPoint(project *models.Project) *float64 {
	purchase := CalculateProjectPurchaseCosts(project).TotalPrice
	rental := CalculateProjectRentalCosts(project, Period1An).TotalPrice
	if rental == 0 {
		return nil
	}
	v := purchase / rental
	return &v
}
