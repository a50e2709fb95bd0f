// Package lead handles requests for a professional on-site audit.
package lead

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// roughSavingsEUR maps the monthly bill bracket to the yearly savings quoted
// on the lead form for a typical home in the area.
var roughSavingsEUR = map[model.BillRange]int{
	model.BillUnder30:  150,
	model.Bill30To60:   250,
	model.Bill60To100:  400,
	model.Bill100To150: 550,
	model.BillOver150:  750,
}

// DefaultBillRange is preselected on the lead form.
const DefaultBillRange = model.Bill60To100

// RoughSavings returns the headline yearly savings estimate for a bill
// bracket. Unknown brackets use the default.
func RoughSavings(r model.BillRange) int {
	if v, ok := roughSavingsEUR[r]; ok {
		return v
	}
	return roughSavingsEUR[DefaultBillRange]
}

// Validate reports the first missing required field of a submission.
func Validate(l model.Lead) error {
	if strings.TrimSpace(l.Name) == "" {
		return eris.New("lead: name is required")
	}
	if strings.TrimSpace(l.Phone) == "" {
		return eris.New("lead: phone is required")
	}
	return nil
}

// New validates a lead submission and fills in the derived fields.
func New(l model.Lead) (model.Lead, error) {
	if err := Validate(l); err != nil {
		return model.Lead{}, err
	}

	l.Name = strings.TrimSpace(l.Name)
	l.Phone = strings.TrimSpace(l.Phone)
	l.Email = strings.TrimSpace(l.Email)
	l.City = strings.TrimSpace(l.City)
	l.Address = strings.TrimSpace(l.Address)

	if _, ok := roughSavingsEUR[l.BillRange]; !ok {
		l.BillRange = DefaultBillRange
	}

	l.RoughEstimateEUR = RoughSavings(l.BillRange)
	if l.Status == "" {
		l.Status = model.LeadStatusNew
	}
	return l, nil
}
