// Package pdf renders project summary documents. It only consumes the
// aggregators' return records and performs no aggregation itself.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/TristanHourtoulle/Moduloop-Kits-sub001/internal/services"
)

// ProjectData is everything the document needs, precomputed by the caller.
type ProjectData struct {
	Nom         string
	Description string
	Status      string
	Date        string
	Summary     services.Summary
}

func euros(v float64) string { return fmt.Sprintf("%.2f €", v) }

// ProjectPDF renders the project summary: the four price totals, per-kit
// breakdown (purchase mode), environmental savings, and break-even point.
func ProjectPDF(data ProjectData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithRightMargin(15).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Moduloop — Synthèse projet", props.Text{
		Size: 16, Style: fontstyle.Bold, Align: align.Center,
	}))
	m.AddRow(8, text.NewCol(12, data.Nom, props.Text{Size: 12, Style: fontstyle.Bold}))
	m.AddRow(5,
		text.NewCol(6, "Statut : "+data.Status, props.Text{Size: 9}),
		text.NewCol(6, "Édité le "+data.Date, props.Text{Size: 9, Align: align.Right}),
	)
	if data.Description != "" {
		m.AddRow(6, text.NewCol(12, data.Description, props.Text{Size: 9}))
	}
	m.AddRows(row.New(3).Add(line.NewCol(12)))

	// Price totals across modes/periods
	m.AddRow(8, text.NewCol(12, "Totaux de prix", props.Text{Size: 11, Style: fontstyle.Bold}))
	totals := data.Summary.PriceTotals
	m.AddRow(6,
		text.NewCol(6, "Achat", props.Text{Size: 9}),
		text.NewCol(6, euros(totals.Achat), props.Text{Size: 9, Align: align.Right}),
	)
	for _, l := range []struct {
		label string
		value float64
	}{
		{"Location 1 an (mensuel)", totals.Location1An},
		{"Location 2 ans (mensuel)", totals.Location2Ans},
		{"Location 3 ans (mensuel)", totals.Location3Ans},
	} {
		m.AddRow(6,
			text.NewCol(6, l.label, props.Text{Size: 9}),
			text.NewCol(6, euros(l.value), props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRows(row.New(3).Add(line.NewCol(12)))

	// Kit breakdown (purchase mode)
	m.AddRow(8, text.NewCol(12, "Détail par kit (achat)", props.Text{Size: 11, Style: fontstyle.Bold}))
	m.AddRow(6,
		text.NewCol(4, "Kit", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(2, "Qté", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(2, "Prix", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Marge", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
		text.NewCol(2, "Marge %", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	)
	for _, item := range data.Summary.KitBreakdown {
		m.AddRow(5,
			text.NewCol(4, item.KitName, props.Text{Size: 8}),
			text.NewCol(2, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 8, Align: align.Center}),
			text.NewCol(2, euros(item.TotalPrice), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, euros(item.TotalMargin), props.Text{Size: 8, Align: align.Right}),
			text.NewCol(2, fmt.Sprintf("%.1f %%", item.MarginPercentage), props.Text{Size: 8, Align: align.Right}),
		)
	}
	m.AddRows(row.New(3).Add(line.NewCol(12)))

	// Environmental savings (rental vs buying new)
	m.AddRow(8, text.NewCol(12, "Économies environnementales (location vs achat neuf)", props.Text{Size: 11, Style: fontstyle.Bold}))
	savings := data.Summary.Savings
	for _, l := range []struct {
		label, unit string
		value       float64
	}{
		{"Réchauffement climatique", "kg CO₂ eq", savings.RechauffementClimatique},
		{"Épuisement des ressources", "kg Sb eq", savings.EpuisementRessources},
		{"Acidification", "mol H+ eq", savings.Acidification},
		{"Eutrophisation", "kg P eq", savings.Eutrophisation},
	} {
		m.AddRow(5,
			text.NewCol(6, l.label, props.Text{Size: 9}),
			text.NewCol(6, fmt.Sprintf("%.2f %s", l.value, l.unit), props.Text{Size: 9, Align: align.Right}),
		)
	}

	if data.Summary.BreakEven != nil {
		m.AddRows(row.New(3).Add(line.NewCol(12)))
		m.AddRow(6, text.NewCol(12,
			fmt.Sprintf("Point d'équilibre achat/location : %.1f mois au tarif 1 an", *data.Summary.BreakEven),
			props.Text{Size: 9, Style: fontstyle.Italic}))
	}

	m.AddRow(10, col.New(12))
	m.AddRow(5, text.NewCol(12, "Document généré par Moduloop Kits", props.Text{
		Size: 7, Align: align.Center,
	}))

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
