package model

// Savings is the estimated monthly saving range for one action.
type Savings struct {
	KWhLow  float64 `json:"kwh_low" yaml:"kwh_low"`
	KWhMid  float64 `json:"kwh_mid" yaml:"kwh_mid"`
	KWhHigh float64 `json:"kwh_high" yaml:"kwh_high"`
	EURMid  float64 `json:"eur_mid" yaml:"eur_mid"`
}

// AdviceItem is one recommended energy-saving action. Difficulty and
// Comfort are on a 1-5 scale.
type AdviceItem struct {
	Code       string  `json:"code"`
	Title      string  `json:"title"`
	Why        string  `json:"why"`
	How        string  `json:"how"`
	Savings    Savings `json:"savings"`
	Difficulty int     `json:"difficulty"`
	Comfort    int     `json:"comfort"`
	Safety     string  `json:"safety,omitempty"`
}

// AdviceOrigin records where an advice list came from.
type AdviceOrigin string

const (
	AdviceOriginService  AdviceOrigin = "service"
	AdviceOriginFallback AdviceOrigin = "fallback"
)

// CatalogAction is an entry in the browsable actions catalog.
type CatalogAction struct {
	Code          string  `json:"code" yaml:"code"`
	Title         string  `json:"title" yaml:"title"`
	Description   string  `json:"description,omitempty" yaml:"description"`
	Difficulty    int     `json:"difficulty" yaml:"difficulty"`
	ComfortImpact int     `json:"comfort_impact" yaml:"comfort_impact"`
	SafetyNotes   string  `json:"safety_notes,omitempty" yaml:"safety_notes"`
	BaseSavings   Savings `json:"base_savings" yaml:"base_savings"`
}
