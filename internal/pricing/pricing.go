// Package pricing rolls up per-product purchase/rental prices and
// environmental metrics through kit → project hierarchies.
//
// Every function is a stateless, deterministic fold over its input: no I/O,
// no shared state, safe to call concurrently. Malformed input (missing nested
// records, unset price fields) degrades to zero contributions and is never an
// error condition.
package pricing

import (
	"math"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/models"
)

// Mode distingue les deux grilles tarifaires d'un produit.
type Mode string

const (
	ModeAchat    Mode = "achat"
	ModeLocation Mode = "location"
)

// Period est la durée d'engagement d'une location. Sans objet en mode achat.
type Period string

const (
	Period1An  Period = "1an"
	Period2Ans Period = "2ans"
	Period3Ans Period = "3ans"
)

// Pricing is the resolved price set of a product for one (mode, period).
// nil means the field is unset on the product and on its legacy fallback.
type Pricing struct {
	PrixAchat    *float64 `json:"prixAchat"`
	PrixUnitaire *float64 `json:"prixUnitaire"`
	PrixVente    *float64 `json:"prixVente"`
}

// Impact is a resolved environmental record. Rental values keep their stored
// sign here; absolute values are only taken where "savings" are computed.
type Impact struct {
	RechauffementClimatique float64 `json:"rechauffementClimatique"`
	EpuisementRessources    float64 `json:"epuisementRessources"`
	Acidification           float64 `json:"acidification"`
	Eutrophisation          float64 `json:"eutrophisation"`
}

// coalesce returns the first non-nil value of the fallback chain
// (mode/period-specific field first, legacy unsuffixed field second).
// The chain lives here once so price and impact resolution share it.
func coalesce(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// val dereferences an optional amount, treating nil as 0.
func val(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ResolvePricing resolves which stored price fields apply for (mode, period),
// falling back to the legacy unsuffixed fields when the mode-specific ones are
// unset. The period is ignored in purchase mode (a single price point exists);
// an unknown period resolves like Period1An.
func ResolvePricing(p *models.Product, mode Mode, period Period) Pricing {
	if p == nil {
		return Pricing{}
	}
	if mode == ModeAchat {
		return Pricing{
			PrixAchat:    coalesce(p.PrixAchatAchat, p.PrixAchat1An),
			PrixUnitaire: coalesce(p.PrixUnitaireAchat, p.PrixUnitaire1An),
			PrixVente:    coalesce(p.PrixVenteAchat, p.PrixVente1An),
		}
	}
	switch period {
	case Period2Ans:
		return Pricing{
			PrixAchat:    coalesce(p.PrixAchatLocation2Ans, p.PrixAchat1An),
			PrixUnitaire: coalesce(p.PrixUnitaireLocation2Ans, p.PrixUnitaire1An),
			PrixVente:    coalesce(p.PrixVenteLocation2Ans, p.PrixVente1An),
		}
	case Period3Ans:
		return Pricing{
			PrixAchat:    coalesce(p.PrixAchatLocation3Ans, p.PrixAchat1An),
			PrixUnitaire: coalesce(p.PrixUnitaireLocation3Ans, p.PrixUnitaire1An),
			PrixVente:    coalesce(p.PrixVenteLocation3Ans, p.PrixVente1An),
		}
	default:
		return Pricing{
			PrixAchat:    coalesce(p.PrixAchatLocation1An, p.PrixAchat1An),
			PrixUnitaire: coalesce(p.PrixUnitaireLocation1An, p.PrixUnitaire1An),
			PrixVente:    coalesce(p.PrixVenteLocation1An, p.PrixVente1An),
		}
	}
}

// ResolveEnvironmentalImpact resolves the product's environmental record for a
// mode. Environmental figures do not vary by commitment length, so there is no
// period parameter. No sign normalization happens here: rental values may be
// negative (savings relative to buying new) and callers decide how to present
// them.
func ResolveEnvironmentalImpact(p *models.Product, mode Mode) Impact {
	if p == nil {
		return Impact{}
	}
	if mode == ModeAchat {
		return Impact{
			RechauffementClimatique: val(coalesce(p.RechauffementClimatiqueAchat, p.RechauffementClimatique)),
			EpuisementRessources:    val(coalesce(p.EpuisementRessourcesAchat, p.EpuisementRessources)),
			Acidification:           val(coalesce(p.AcidificationAchat, p.Acidification)),
			Eutrophisation:          val(coalesce(p.EutrophisationAchat, p.Eutrophisation)),
		}
	}
	return Impact{
		RechauffementClimatique: val(coalesce(p.RechauffementClimatiqueLocation, p.RechauffementClimatique)),
		EpuisementRessources:    val(coalesce(p.EpuisementRessourcesLocation, p.EpuisementRessources)),
		Acidification:           val(coalesce(p.AcidificationLocation, p.Acidification)),
		Eutrophisation:          val(coalesce(p.EutrophisationLocation, p.Eutrophisation)),
	}
}

// AnnualToMonthly converts an annual amount to the monthly figure stored on
// rental price fields.
func AnnualToMonthly(annual float64) float64 { return annual / 12 }

// MonthlyToAnnual converts a stored monthly rental amount to an annual figure.
func MonthlyToAnnual(monthly float64) float64 { return monthly * 12 }

// CeilPrice rounds up to the nearest currency unit so converted quotes are
// never under-quoted.
func CeilPrice(v float64) float64 { return math.Ceil(v) }
