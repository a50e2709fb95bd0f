// Package readiness scores a roof's suitability for solar from a
// technician's site-visit checklist.
package readiness

import (
	"math"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// Weights of the four sub-scores. They sum to 1.
const (
	OrientationWeight = 0.35
	ShadingWeight     = 0.35
	AngleWeight       = 0.15
	StructureWeight   = 0.15
)

const (
	idealAngle    = 30.0
	angleSpan     = 90.0
	minAngleScore = 0.6
)

var orientationScores = map[model.Orientation]float64{
	model.OrientationSouth:     1.0,
	model.OrientationSoutheast: 0.9,
	model.OrientationSouthwest: 0.9,
	model.OrientationEast:      0.8,
	model.OrientationWest:      0.8,
	model.OrientationNortheast: 0.6,
	model.OrientationNorthwest: 0.6,
	model.OrientationNorth:     0.4,
}

var shadingScores = map[model.Shading]float64{
	model.ShadingNone:     1.0,
	model.ShadingLight:    0.9,
	model.ShadingModerate: 0.75,
	model.ShadingHeavy:    0.5,
}

var qualityScores = map[model.Quality]float64{
	model.QualityGood:    1.0,
	model.QualityAverage: 0.85,
	model.QualityPoor:    0.7,
}

// Unrecognized values score as the worst entry of their table.
const (
	unknownOrientation = 0.4
	unknownShading     = 0.5
	unknownQuality     = 0.7
)

// Breakdown exposes the normalized sub-scores behind a readiness score.
type Breakdown struct {
	Orientation float64 `json:"orientation"`
	Shading     float64 `json:"shading"`
	Angle       float64 `json:"angle"`
	Structure   float64 `json:"structure"`
}

// Weighted returns the weighted sum of the sub-scores in [0,1].
func (b Breakdown) Weighted() float64 {
	return b.Orientation*OrientationWeight +
		b.Shading*ShadingWeight +
		b.Angle*AngleWeight +
		b.Structure*StructureWeight
}

// Evaluate computes the sub-scores for a checklist.
func Evaluate(c model.SiteVisitChecklist) Breakdown {
	return Breakdown{
		Orientation: lookup(orientationScores, c.Orientation, unknownOrientation),
		Shading:     lookup(shadingScores, c.Shading, unknownShading),
		Angle:       AngleScore(c.RoofAngle),
		Structure: (lookup(qualityScores, c.InsulationQuality, unknownQuality) +
			lookup(qualityScores, c.WindowsQuality, unknownQuality)) / 2,
	}
}

// Score returns the readiness percentage in [0,100].
func Score(c model.SiteVisitChecklist) int {
	return int(math.Round(Evaluate(c).Weighted() * 100))
}

// AngleScore penalizes roof pitches away from 30 degrees, floored at 0.6.
func AngleScore(angle float64) float64 {
	return math.Max(minAngleScore, 1-math.Abs(idealAngle-angle)/angleSpan)
}

func lookup[K comparable](table map[K]float64, key K, fallback float64) float64 {
	if v, ok := table[key]; ok {
		return v
	}
	return fallback
}
