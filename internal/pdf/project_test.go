package pdf

import (
	"bytes"
	"testing"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/pricing"
	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/services"
)

func TestProjectPDFRendersSummary(t *testing.T) {
	breakEven := 10.0
	data := ProjectData{
		Nom:         "Siège social",
		Description: "Réaménagement du deuxième étage",
		Status:      "ACTIF",
		Date:        "29/08/2026",
		Summary: services.Summary{
			PriceTotals:   pricing.ProjectPriceTotals{Achat: 600, Location1An: 60, Location2Ans: 50, Location3Ans: 40},
			PurchaseCosts: pricing.ProjectCosts{TotalPrice: 600, TotalCost: 480, TotalMargin: 120},
			RentalCosts: map[string]pricing.ProjectCosts{
				"1an": {TotalPrice: 60, TotalCost: 48, TotalMargin: 12},
			},
			KitBreakdown: []pricing.KitBreakdownItem{
				{KitName: "Open space", Quantity: 2, TotalPrice: 600, TotalCost: 480, TotalMargin: 120, MarginPercentage: 20},
			},
			Savings:   pricing.Impact{RechauffementClimatique: 12.5},
			BreakEven: &breakEven,
		},
	}
	doc, err := ProjectPDF(data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestProjectPDFEmptyProject(t *testing.T) {
	doc, err := ProjectPDF(ProjectData{Nom: "Vide", Status: "ACTIF", Date: "29/08/2026"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("empty document")
	}
}
