package model

import "time"

// DwellingType is the kind of building an audit describes.
type DwellingType string

const (
	DwellingApartment DwellingType = "apartment"
	DwellingHouse     DwellingType = "house"
	DwellingOffice    DwellingType = "office"
)

// RoofType describes the roof geometry.
type RoofType string

const (
	RoofFlat   RoofType = "flat"
	RoofSloped RoofType = "sloped"
)

// HeatingType is the primary space-heating source.
type HeatingType string

const (
	HeatingElectric HeatingType = "electric"
	HeatingWood     HeatingType = "wood"
	HeatingPellet   HeatingType = "pellet"
	HeatingGas      HeatingType = "gas"
	HeatingDistrict HeatingType = "district"
)

// WaterHeater is the domestic hot water system.
type WaterHeater string

const (
	WaterHeaterElectricTank WaterHeater = "electric_tank"
	WaterHeaterInstant      WaterHeater = "instant"
	WaterHeaterSolar        WaterHeater = "solar"
)

// Curtains is the self-reported curtain quality.
type Curtains string

const (
	CurtainsNone  Curtains = "none"
	CurtainsLight Curtains = "light"
	CurtainsHeavy Curtains = "heavy"
)

// Quality is the three-level rating used for insulation and windows.
type Quality string

const (
	QualityPoor    Quality = "poor"
	QualityAverage Quality = "average"
	QualityGood    Quality = "good"
)

// DefaultOffPeakWindow is the tariff window recorded with new audits.
const DefaultOffPeakWindow = "22:00-06:00"

// Occupancy holds the household's daily schedule as HH:MM strings.
type Occupancy struct {
	Wake   string `json:"wake,omitempty"`
	Leave  string `json:"leave,omitempty"`
	Return string `json:"return,omitempty"`
	Sleep  string `json:"sleep,omitempty"`
}

// Tariff describes the electricity tariff the household is on.
type Tariff struct {
	OffPeak string `json:"offpeak,omitempty"`
}

// AuditProfile is a self-reported household energy questionnaire.
type AuditProfile struct {
	ID                 string       `json:"id,omitempty"`
	UserID             string       `json:"user_id,omitempty"`
	City               string       `json:"city,omitempty"`
	Address            string       `json:"address,omitempty"`
	DwellingType       DwellingType `json:"dwelling_type"`
	RoofType           RoofType     `json:"roof_type"`
	HeatingType        HeatingType  `json:"heating_type"`
	ThermostatSetpoint float64      `json:"thermostat_setpoint"`
	WaterHeater        WaterHeater  `json:"water_heater"`
	WaterTankLiters    *int         `json:"water_tank_liters,omitempty"`
	Curtains           Curtains     `json:"curtains"`
	InsulationLevel    Quality      `json:"insulation_level"`
	Occupancy          *Occupancy   `json:"occupancy,omitempty"`
	Tariff             *Tariff      `json:"tariff,omitempty"`
	CreatedAt          time.Time    `json:"created_at,omitempty"`
}

// EndUseBreakdown is the estimated monthly kWh split by end use.
type EndUseBreakdown struct {
	HeatingKWh    int `json:"heating_kwh"`
	DHWKWh        int `json:"dhw_kwh"`
	AppliancesKWh int `json:"appliances_kwh"`
}

// Total returns the sum of all end uses.
func (b EndUseBreakdown) Total() int {
	return b.HeatingKWh + b.DHWKWh + b.AppliancesKWh
}
