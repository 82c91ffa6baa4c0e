package pricing

import "github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"

// KitImpact is the summed environmental impact and floor surface of a kit's
// product lines, each multiplied by its quantity. Values keep their stored
// sign (rental savings may be negative at this layer).
type KitImpact struct {
	RechauffementClimatique float64 `json:"rechauffementClimatique"`
	EpuisementRessources    float64 `json:"epuisementRessources"`
	Acidification           float64 `json:"acidification"`
	Eutrophisation          float64 `json:"eutrophisation"`
	Surface                 float64 `json:"surface"`
}

// CalculateKitPrice sums prixVente × quantité over the kit's product lines for
// the given mode/period. Lines whose Product pointer is nil are skipped
// silently: partially loaded data contributes 0, it does not fail. Empty or
// nil input yields 0.
func CalculateKitPrice(kitProducts []models.KitProduct, mode Mode, period Period) float64 {
	total := 0.0
	for _, kp := range kitProducts {
		if kp.Product == nil {
			continue
		}
		total += val(ResolvePricing(kp.Product, mode, period).PrixVente) * float64(kp.Quantite)
	}
	return total
}

// CalculateKitImpact sums the environmental fields and surface of the kit's
// lines for a mode, with the same skip policy as CalculateKitPrice.
func CalculateKitImpact(kitProducts []models.KitProduct, mode Mode) KitImpact {
	var out KitImpact
	for _, kp := range kitProducts {
		if kp.Product == nil {
			continue
		}
		q := float64(kp.Quantite)
		imp := ResolveEnvironmentalImpact(kp.Product, mode)
		out.RechauffementClimatique += imp.RechauffementClimatique * q
		out.EpuisementRessources += imp.EpuisementRessources * q
		out.Acidification += imp.Acidification * q
		out.Eutrophisation += imp.Eutrophisation * q
		out.Surface += val(kp.Product.SurfaceM2) * q
	}
	return out
}
