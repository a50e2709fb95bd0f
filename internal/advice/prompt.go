package advice

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/solarsense-cli/internal/model"
)

const systemPrompt = "You are SolarSense, an energy efficiency advisor for Kosovo households and SMEs. " +
	"You answer with JSON only."

const outputShape = `[{
  "code": "ACTION_CODE",
  "title": "Action title",
  "why": "Brief explanation of why this helps (1-2 sentences)",
  "how": "Practical implementation steps with specific times/values",
  "savings": {"kwh_low": 10, "kwh_mid": 15, "kwh_high": 20, "eur_mid": 3},
  "difficulty": 2,
  "comfort": 3,
  "safety": "Optional safety note"
}]`

// BuildPrompt renders the user message describing the profile and its
// estimated consumption.
func BuildPrompt(p model.AuditProfile, totalKWh int) string {
	var b strings.Builder

	b.WriteString("Profile:\n")
	fmt.Fprintf(&b, "- Location: %s\n", p.City)
	fmt.Fprintf(&b, "- Dwelling: %s\n", p.DwellingType)
	fmt.Fprintf(&b, "- Heating: %s\n", p.HeatingType)
	fmt.Fprintf(&b, "- Thermostat: %s°C\n", strconv.FormatFloat(p.ThermostatSetpoint, 'f', -1, 64))
	if p.WaterTankLiters != nil && *p.WaterTankLiters > 0 {
		fmt.Fprintf(&b, "- Hot water: %s (%dL)\n", p.WaterHeater, *p.WaterTankLiters)
	} else {
		fmt.Fprintf(&b, "- Hot water: %s\n", p.WaterHeater)
	}
	fmt.Fprintf(&b, "- Curtains: %s\n", p.Curtains)
	fmt.Fprintf(&b, "- Insulation: %s\n", p.InsulationLevel)
	fmt.Fprintf(&b, "- Estimated monthly consumption: %d kWh\n\n", totalKWh)

	b.WriteString("Generate 8-10 prioritized energy-saving actions. Focus on:\n")
	b.WriteString("1. Behavior changes (low cost, high impact)\n")
	b.WriteString("2. Quick wins (draft sealing, curtain usage)\n")
	b.WriteString("3. Heating/DHW optimization\n")
	b.WriteString("4. Safety-first recommendations\n\n")

	b.WriteString("Return a JSON array with this structure:\n")
	b.WriteString(outputShape)
	b.WriteString("\n\n")

	b.WriteString("Safety rules:\n")
	b.WriteString("- Boiler temp: 55-65°C only\n")
	b.WriteString("- Heating setpoint: 20-21°C recommended\n")
	b.WriteString("- Never suggest unsafe DIY electrical work")

	return b.String()
}
