package model

import "time"

// Orientation is the 8-point compass direction the roof faces.
type Orientation string

const (
	OrientationNorth     Orientation = "north"
	OrientationNortheast Orientation = "northeast"
	OrientationEast      Orientation = "east"
	OrientationSoutheast Orientation = "southeast"
	OrientationSouth     Orientation = "south"
	OrientationSouthwest Orientation = "southwest"
	OrientationWest      Orientation = "west"
	OrientationNorthwest Orientation = "northwest"
)

// Shading is the amount of shade on the roof.
type Shading string

const (
	ShadingNone     Shading = "none"
	ShadingLight    Shading = "light"
	ShadingModerate Shading = "moderate"
	ShadingHeavy    Shading = "heavy"
)

// DefaultMonthlyKWh is assumed when a checklist has no usable consumption.
const DefaultMonthlyKWh = 350

// SiteVisitChecklist is the technician's on-site readiness assessment.
type SiteVisitChecklist struct {
	ID                string      `json:"id,omitempty"`
	LeadID            string      `json:"lead_id,omitempty"`
	Orientation       Orientation `json:"orientation"`
	RoofType          RoofType    `json:"roof_type"`
	RoofAngle         float64     `json:"roof_angle"`
	Shading           Shading     `json:"shading"`
	InsulationQuality Quality     `json:"insulation_quality"`
	WindowsQuality    Quality     `json:"windows_quality"`
	AvgMonthlyKWh     float64     `json:"avg_monthly_kwh"`
	Notes             string      `json:"notes,omitempty"`
	ReadinessScore    int         `json:"readiness_score"`
	CreatedAt         time.Time   `json:"created_at,omitempty"`
}
