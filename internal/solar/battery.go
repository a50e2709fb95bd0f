package solar

import (
	"math"

	"github.com/sells-group/solarsense-cli/internal/model"
)

const (
	batteryShareOfDaily = 0.5
	minBatteryKWh       = 2.0
	maxBatteryKWh       = 10.0
	batteryCostLowKWh   = 300.0
	batteryCostHighKWh  = 500.0
)

// SizeBattery recommends storage of about half the daily PV yield, in 0.5 kWh
// steps clamped to [2,10] kWh.
func SizeBattery(annualProductionKWh float64) model.BatteryRecommendation {
	daily := max(1, int(math.Round(annualProductionKWh/daysPerYear)))

	capacity := math.Round(float64(daily)*batteryShareOfDaily*2) / 2
	capacity = math.Max(minBatteryKWh, math.Min(maxBatteryKWh, capacity))

	return model.BatteryRecommendation{
		DailyProductionKWh: daily,
		RecommendedKWh:     capacity,
		CostLowEUR:         int(math.Round(capacity * batteryCostLowKWh)),
		CostHighEUR:        int(math.Round(capacity * batteryCostHighKWh)),
		CoveragePercent:    min(100, int(math.Round(capacity/float64(daily)*100))),
	}
}
