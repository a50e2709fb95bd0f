package advice

import "github.com/sells-group/solarsense-cli/internal/model"

// Fallback returns the fixed advice list served when the advice service is
// unavailable. The list is the same for every profile and a fresh copy is
// returned on each call.
func Fallback() []model.AdviceItem {
	return []model.AdviceItem{
		{
			Code:  "SETPOINT_20_21",
			Title: "Lower thermostat to 20-21°C",
			Why:   "Each degree reduction saves ~6% on heating costs without major comfort loss.",
			How:   "Reduce your thermostat to 20-21°C. Wear a light sweater indoors during colder months.",
			Savings: model.Savings{
				KWhLow: 15, KWhMid: 20, KWhHigh: 25, EURMid: 4,
			},
			Difficulty: 1,
			Comfort:    3,
		},
		{
			Code:  "CURTAINS_DUSK",
			Title: "Close curtains at dusk",
			Why:   "Heavy curtains reduce heat loss through windows by up to 25%.",
			How:   "Close all curtains around sunset (typically 17:00-18:00 in winter) to retain warmth. Open them in morning sunlight.",
			Savings: model.Savings{
				KWhLow: 8, KWhMid: 12, KWhHigh: 15, EURMid: 2,
			},
			Difficulty: 1,
			Comfort:    5,
		},
		{
			Code:  "DHW_OFFPEAK",
			Title: "Heat water during off-peak hours",
			Why:   "Shifting hot water heating to 22:00-06:00 reduces costs with time-of-use tariffs.",
			How:   "Install a timer on your water heater to run only during 22:00-06:00. Tank insulation keeps water hot throughout the day.",
			Savings: model.Savings{
				KWhLow: 10, KWhMid: 18, KWhHigh: 25, EURMid: 3,
			},
			Difficulty: 2,
			Comfort:    5,
			Safety:     "Have a licensed electrician install the timer to avoid electrical hazards.",
		},
	}
}
