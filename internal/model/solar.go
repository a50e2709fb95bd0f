package model

// SizingStrategy names how a system size was derived.
type SizingStrategy string

const (
	SizingProfile     SizingStrategy = "profile"
	SizingConsumption SizingStrategy = "consumption"
)

// SolarSizing is a recommended PV system size and its yearly yield.
type SolarSizing struct {
	Strategy            SizingStrategy `json:"strategy"`
	SystemSizeKW        float64        `json:"system_size_kw"`
	AnnualProductionKWh float64        `json:"annual_production_kwh"`
}

// Economics holds the cost and return figures for a SolarSizing.
type Economics struct {
	CostLowEUR       int     `json:"cost_low"`
	CostHighEUR      int     `json:"cost_high"`
	AnnualSavingsEUR int     `json:"annual_savings_eur"`
	PaybackYears     float64 `json:"payback_years"`
	CO2TonsPerYear   float64 `json:"co2_saved_tons_per_year"`
}

// Projection is the simplified 25-year savings outlook.
type Projection struct {
	AnnualKWhAssumption    int `json:"annual_kwh_assumption"`
	Savings25YearEUR       int `json:"savings_25y_eur"`
	InstallCostEstimateEUR int `json:"install_cost_estimate_eur"`
	Savings25YearPercent   int `json:"savings_25y_percent_vs_cost"`
}

// BatteryRecommendation is a home storage suggestion.
type BatteryRecommendation struct {
	DailyProductionKWh int     `json:"daily_pv_kwh"`
	RecommendedKWh     float64 `json:"battery_kwh_recommended"`
	CostLowEUR         int     `json:"battery_cost_low"`
	CostHighEUR        int     `json:"battery_cost_high"`
	CoveragePercent    int     `json:"battery_coverage_pct"`
}
