package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rotisserie/eris"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// RenderSolarPDF renders the self-service solar potential report as an A4
// PDF document.
func RenderSolarPDF(a model.SolarAssessment) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, "Solar Potential Report", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	location := a.Input.City
	if a.Input.Address != "" {
		location = a.Input.Address + ", " + location
	}
	m.AddRow(20,
		col.New(6).Add(
			text.New("Location: "+orDash(location), props.Text{Top: 0}),
			text.New("Dwelling: "+string(a.Input.DwellingType), props.Text{Top: 5}),
			text.New("Roof: "+string(a.Input.RoofType), props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Assessment: "+orDash(a.ID), props.Text{Align: align.Right}),
			text.New(a.CreatedAt.Format("2006-01-02"), props.Text{Top: 5, Align: align.Right}),
		),
	)

	section(m, "Potential")
	line(m, "Recommended system", fmt.Sprintf("%.1f kW", a.Potential.SystemSizeKW))
	line(m, "Annual production", fmt.Sprintf("%.0f kWh", a.Potential.AnnualProductionKWh))

	section(m, "Economics")
	line(m, "Installed cost", fmt.Sprintf("EUR %d - %d", a.Economics.CostLowEUR, a.Economics.CostHighEUR))
	line(m, "Annual savings", fmt.Sprintf("EUR %d", a.Economics.AnnualSavingsEUR))
	line(m, "Payback", fmt.Sprintf("%.1f years", a.Economics.PaybackYears))
	line(m, "CO2 saved", fmt.Sprintf("%.1f t/year", a.Economics.CO2TonsPerYear))

	section(m, "25-year outlook")
	line(m, "Annual yield assumed", fmt.Sprintf("%d kWh", a.Projection.AnnualKWhAssumption))
	line(m, "Savings over 25 years", fmt.Sprintf("EUR %d", a.Projection.Savings25YearEUR))
	line(m, "Install cost estimate", fmt.Sprintf("EUR %d", a.Projection.InstallCostEstimateEUR))
	line(m, "Savings vs cost", fmt.Sprintf("%d%%", a.Projection.Savings25YearPercent))

	if b := a.Battery; b != nil {
		section(m, "Battery")
		line(m, "Daily PV production", fmt.Sprintf("%d kWh", b.DailyProductionKWh))
		line(m, "Recommended capacity", fmt.Sprintf("%.1f kWh", b.RecommendedKWh))
		line(m, "Battery cost", fmt.Sprintf("EUR %d - %d", b.CostLowEUR, b.CostHighEUR))
		line(m, "Daily coverage", fmt.Sprintf("%d%%", b.CoveragePercent))
	}

	m.AddRow(20,
		text.NewCol(12, "Figures are heuristic estimates from regional averages, not a quote.", props.Text{
			Size:  8,
			Top:   10,
			Style: fontstyle.Italic,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, eris.Wrap(err, "report: generate solar pdf")
	}
	return doc.GetBytes(), nil
}

func section(m core.Maroto, title string) {
	m.AddRow(12,
		text.NewCol(12, title, props.Text{Size: 13, Style: fontstyle.Bold, Top: 4}),
	)
}

func line(m core.Maroto, label, value string) {
	m.AddRow(7,
		text.NewCol(6, label, props.Text{Size: 10}),
		text.NewCol(6, value, props.Text{Size: 10, Align: align.Right}),
	)
}
