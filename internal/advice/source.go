// Package advice produces the ranked list of energy-saving actions for an
// audit, either from the generative advice service or from a fixed fallback.
package advice

import (
	"context"
	"fmt"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// Source generates prioritized advice for an audit profile. The returned
// order is the priority order.
type Source interface {
	Generate(ctx context.Context, p model.AuditProfile, totalKWh int) ([]model.AdviceItem, error)
}

// Reason classifies why the advice service did not produce a usable list.
type Reason string

// Failure reasons. They double as metric label values.
const (
	ReasonNotConfigured Reason = "not_configured"
	ReasonRequest       Reason = "request"
	ReasonEmptyResponse Reason = "empty_response"
	ReasonParse         Reason = "parse"
	ReasonCircuitOpen   Reason = "circuit_open"
)

// ServiceError is returned by a Source when it cannot produce advice.
type ServiceError struct {
	Reason Reason
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("advice: %s", e.Reason)
	}
	return fmt.Sprintf("advice: %s: %v", e.Reason, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func serviceErr(r Reason, err error) *ServiceError {
	return &ServiceError{Reason: r, Err: err}
}
