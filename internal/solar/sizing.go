// Package solar sizes rooftop PV systems and home batteries and projects
// their economics with fixed regional constants.
//
// Two sizing strategies exist side by side. SizeFromProfile works from the
// dwelling type and roof of a self-service audit; SizeFromConsumption works
// from the monthly consumption recorded on a site visit. They make different
// assumptions and are not reconciled.
package solar

import (
	"math"
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/solarsense-cli/internal/model"
)

const (
	// YieldKWhPerKW is the regional annual yield per installed kW.
	YieldKWhPerKW = 1200.0

	// Profile strategy.
	densityKWPerM2 = 0.17 // ~170 Wp per m² including spacing
	minProfileKW   = 2.0
	maxProfileKW   = 8.0

	// Consumption strategy.
	daysPerMonth      = 30.0
	peakSunHours      = 4.0
	performanceFactor = 1.2 // inverter and temperature losses
	minFieldKW        = 1.5
)

var roofAreaM2 = map[model.DwellingType]float64{
	model.DwellingHouse:     60,
	model.DwellingOffice:    100,
	model.DwellingApartment: 30,
}

const defaultRoofAreaM2 = 30

// Flat roofs need racks and row spacing.
var tiltFactor = map[model.RoofType]float64{
	model.RoofSloped: 1.0,
	model.RoofFlat:   0.9,
}

const defaultTiltFactor = 0.9

var shadingFactor = map[model.Shading]float64{
	model.ShadingNone:     1.0,
	model.ShadingLight:    0.9,
	model.ShadingModerate: 0.75,
	model.ShadingHeavy:    0.5,
}

// UnspecifiedShadingFactor applies when a checklist records no shading.
const UnspecifiedShadingFactor = 0.85

// referenceCities get the full yield; other named places get a small haircut.
var referenceCities = []string{"pristina", "prishtina", "prizren", "gjakova"}

const otherCityFactor = 0.95

// CityFactor returns the coarse yield factor for a city name. An empty city
// is neutral.
func CityFactor(city string) float64 {
	c := strings.TrimSpace(city)
	if c == "" {
		return 1.0
	}
	c = cases.Fold().String(c)
	for _, ref := range referenceCities {
		if strings.Contains(c, ref) {
			return 1.0
		}
	}
	return otherCityFactor
}

// ShadingFactor returns the production factor for a shading level.
func ShadingFactor(s model.Shading) float64 {
	if f, ok := shadingFactor[s]; ok {
		return f
	}
	return UnspecifiedShadingFactor
}

// RoofArea returns the usable roof area assumed for a dwelling type.
func RoofArea(d model.DwellingType) float64 {
	if a, ok := roofAreaM2[d]; ok {
		return a
	}
	return defaultRoofAreaM2
}

// SizeFromProfile sizes a system from the dwelling's usable roof area. The
// size is clamped to [2,8] kW and rounded to one decimal.
func SizeFromProfile(d model.DwellingType, roof model.RoofType, city string) model.SolarSizing {
	tilt, ok := tiltFactor[roof]
	if !ok {
		tilt = defaultTiltFactor
	}

	raw := RoofArea(d) * densityKWPerM2 * tilt
	size := round1(math.Max(minProfileKW, math.Min(raw, maxProfileKW)))

	return model.SolarSizing{
		Strategy:            model.SizingProfile,
		SystemSizeKW:        size,
		AnnualProductionKWh: math.Round(size * YieldKWhPerKW * CityFactor(city)),
	}
}

// SizeFromConsumption sizes a system to cover the checklist's monthly
// consumption, floored at 1.5 kW. Non-positive consumption uses the default
// monthly figure.
func SizeFromConsumption(monthlyKWh float64, shading model.Shading) model.SolarSizing {
	if monthlyKWh <= 0 {
		monthlyKWh = model.DefaultMonthlyKWh
	}
	daily := monthlyKWh / daysPerMonth
	size := math.Max(minFieldKW, round1(daily/peakSunHours*performanceFactor))

	return model.SolarSizing{
		Strategy:            model.SizingConsumption,
		SystemSizeKW:        size,
		AnnualProductionKWh: size * YieldKWhPerKW * ShadingFactor(shading),
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
