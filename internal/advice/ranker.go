package advice

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/resilience"
)

// Result is a ranked advice list and where it came from.
type Result struct {
	Items  []model.AdviceItem
	Origin model.AdviceOrigin
	// Reason is set when Origin is fallback.
	Reason Reason
}

// Ranker turns a Source into a list that is never empty. Safe for
// concurrent use.
type Ranker struct {
	source  Source
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	timeout time.Duration
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker)

// WithMetrics records advice outcomes on m.
func WithMetrics(m *metrics.Metrics) RankerOption {
	return func(r *Ranker) { r.metrics = m }
}

// WithTimeout bounds each Source call. Zero means no extra bound.
func WithTimeout(d time.Duration) RankerOption {
	return func(r *Ranker) { r.timeout = d }
}

// WithBreaker overrides the circuit breaker configuration.
func WithBreaker(cfg resilience.CircuitBreakerConfig) RankerOption {
	return func(r *Ranker) { r.breaker = r.newBreaker(cfg) }
}

// NewRanker wraps source. A nil source always falls back.
func NewRanker(source Source, opts ...RankerOption) *Ranker {
	r := &Ranker{source: source}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = r.newBreaker(resilience.FromSettings(0, 0))
	}
	return r
}

func (r *Ranker) newBreaker(cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	if cfg.ShouldTrip == nil {
		cfg.ShouldTrip = func(err error) bool {
			return classify(err) != ReasonNotConfigured
		}
	}
	next := cfg.OnStateChange
	cfg.OnStateChange = func(from, to resilience.State) {
		zap.L().Info("advice: circuit state change",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		r.metrics.SetBreakerState(int(to))
		if next != nil {
			next(from, to)
		}
	}
	return resilience.NewCircuitBreaker(cfg)
}

// Rank returns the advice for p. It never fails: any service failure yields
// Fallback. Service lists are returned in the order received.
func (r *Ranker) Rank(ctx context.Context, p model.AuditProfile, totalKWh int) Result {
	if r.source == nil {
		return r.fallback(p, ReasonNotConfigured, nil)
	}

	start := time.Now()
	items, err := resilience.Do(ctx, r.breaker, func(ctx context.Context) ([]model.AdviceItem, error) {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		items, err := r.source.Generate(ctx, p, totalKWh)
		if err == nil && len(items) == 0 {
			err = serviceErr(ReasonEmptyResponse, nil)
		}
		return items, err
	})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		r.metrics.ObserveAdviceLatency(time.Since(start))
	}
	if err != nil {
		return r.fallback(p, classify(err), err)
	}

	r.metrics.AdviceServed(string(model.AdviceOriginService), "")
	return Result{Items: items, Origin: model.AdviceOriginService}
}

func (r *Ranker) fallback(p model.AuditProfile, reason Reason, err error) Result {
	fields := []zap.Field{
		zap.String("audit_id", p.ID),
		zap.String("reason", string(reason)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	zap.L().Warn("advice: using fallback list", fields...)
	r.metrics.AdviceServed(string(model.AdviceOriginFallback), string(reason))

	return Result{
		Items:  Fallback(),
		Origin: model.AdviceOriginFallback,
		Reason: reason,
	}
}

// CircuitState reports the state of the ranker's breaker.
func (r *Ranker) CircuitState() resilience.State {
	return r.breaker.State()
}

func classify(err error) Reason {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return ReasonCircuitOpen
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Reason
	}
	return ReasonRequest
}
