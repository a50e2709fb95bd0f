// Package audit estimates monthly consumption and an efficiency score from a
// self-reported household questionnaire.
package audit

import (
	"math"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// heatingBaseKWh is the monthly heating baseline per dwelling type.
var heatingBaseKWh = map[model.DwellingType]float64{
	model.DwellingApartment: 300,
	model.DwellingHouse:     450,
	model.DwellingOffice:    350,
}

// insulationFactor scales heating after the thermostat adjustment.
var insulationFactor = map[model.Quality]float64{
	model.QualityPoor:    1.3,
	model.QualityAverage: 1.0,
	model.QualityGood:    0.8,
}

// fixedDHWKWh holds the monthly hot-water use of systems without a tank.
var fixedDHWKWh = map[model.WaterHeater]int{
	model.WaterHeaterInstant: 80,
	model.WaterHeaterSolar:   40,
}

// ComfortSetpoint is the thermostat setting above which heating and score
// penalties start.
const ComfortSetpoint = 21.0

// AppliancesKWh is the fixed monthly appliance baseline.
const AppliancesKWh = 150

const (
	setpointStep      = 0.06 // heating increase per degree above comfort
	defaultTankLiters = 100
	tankKWhPerLiter   = 0.6
)

// EstimateConsumption derives the monthly end-use breakdown for a profile.
// Missing fields fall back to the apartment baseline, average insulation and
// a 100 L tank.
func EstimateConsumption(p model.AuditProfile) model.EndUseBreakdown {
	return model.EndUseBreakdown{
		HeatingKWh:    HeatingKWh(p),
		DHWKWh:        DHWKWh(p),
		AppliancesKWh: AppliancesKWh,
	}
}

// HeatingKWh estimates monthly space-heating consumption.
func HeatingKWh(p model.AuditProfile) int {
	kwh, ok := heatingBaseKWh[p.DwellingType]
	if !ok {
		kwh = heatingBaseKWh[model.DwellingApartment]
	}

	if p.ThermostatSetpoint > ComfortSetpoint {
		kwh *= 1 + setpointStep*(p.ThermostatSetpoint-ComfortSetpoint)
	}

	if f, ok := insulationFactor[p.InsulationLevel]; ok {
		kwh *= f
	}

	return int(math.Round(kwh))
}

// DHWKWh estimates monthly domestic hot water consumption. Anything that is
// not an instant or solar heater is treated as a tank.
func DHWKWh(p model.AuditProfile) int {
	if kwh, ok := fixedDHWKWh[p.WaterHeater]; ok {
		return kwh
	}

	liters := defaultTankLiters
	if p.WaterTankLiters != nil && *p.WaterTankLiters > 0 {
		liters = *p.WaterTankLiters
	}
	return int(math.Round(float64(liters) * tankKWhPerLiter))
}
