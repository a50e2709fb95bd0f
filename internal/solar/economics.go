package solar

import (
	"math"

	"github.com/sells-group/solarsense-cli/internal/model"
)

const (
	costPerKWLow  = 900.0  // EUR installed, low end
	costPerKWHigh = 1200.0 // EUR installed, high end
	pricePerKWh   = 0.12   // EUR, retail electricity
	minPayback    = 2.5    // years
	co2TonsPerKWh = 0.0006 // 0.6 kg CO2 displaced per grid kWh
)

// 25-year projection assumptions.
const (
	projectionYears     = 25
	dailyKWhPerKWp      = 3.1
	installCostPerKWp   = 1000.0
	projectionGridPrice = 0.10
	daysPerYear         = 365.0
)

// Economics derives cost, savings, payback and CO2 figures for a sizing.
// Payback is floored at 2.5 years.
func Economics(s model.SolarSizing) model.Economics {
	costLow := int(math.Round(s.SystemSizeKW * costPerKWLow))
	costHigh := int(math.Round(s.SystemSizeKW * costPerKWHigh))
	savings := int(math.Round(s.AnnualProductionKWh * pricePerKWh))

	mid := float64(costLow+costHigh) / 2
	payback := math.Max(minPayback, round1(mid/float64(max(savings, 1))))

	return model.Economics{
		CostLowEUR:       costLow,
		CostHighEUR:      costHigh,
		AnnualSavingsEUR: savings,
		PaybackYears:     payback,
		CO2TonsPerYear:   round1(s.AnnualProductionKWh * co2TonsPerKWh),
	}
}

// Project25Year is the simplified long-run outlook shown on the self-service
// report. It uses its own yield and price assumptions.
func Project25Year(sizeKW float64) model.Projection {
	annual := int(math.Round(sizeKW * dailyKWhPerKWp * daysPerYear))
	savings := int(math.Round(float64(annual) * projectionYears * projectionGridPrice))
	install := int(math.Round(sizeKW * installCostPerKWp))

	return model.Projection{
		AnnualKWhAssumption:    annual,
		Savings25YearEUR:       savings,
		InstallCostEstimateEUR: install,
		Savings25YearPercent:   int(math.Round(float64(savings) / float64(max(install, 1)) * 100)),
	}
}
