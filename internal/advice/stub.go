package advice

import (
	"context"
	"sync/atomic"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// StubSource is a deterministic Source for tests and offline runs. It fails
// with Err when set, with ReasonNotConfigured when Items is empty, and
// otherwise returns a copy of Items.
type StubSource struct {
	Items []model.AdviceItem
	Err   error

	calls atomic.Int64
}

// Generate implements Source.
func (s *StubSource) Generate(ctx context.Context, _ model.AuditProfile, _ int) ([]model.AdviceItem, error) {
	s.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, serviceErr(ReasonRequest, err)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.Items) == 0 {
		return nil, serviceErr(ReasonNotConfigured, nil)
	}
	out := make([]model.AdviceItem, len(s.Items))
	copy(out, s.Items)
	return out, nil
}

// Calls reports how many times Generate ran.
func (s *StubSource) Calls() int {
	return int(s.calls.Load())
}
