// Package report chains the engine packages into the records the store
// persists, and renders them as text, PDF and XLSX.
package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/audit"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/store"
)

// BuildAuditReport runs estimator, scorer and ranker for one profile. It
// never fails; advice service problems surface as a fallback origin.
func BuildAuditReport(ctx context.Context, ranker *advice.Ranker, p model.AuditProfile) model.AuditReport {
	res := audit.Evaluate(p)
	ranked := ranker.Rank(ctx, p, res.TotalKWh)

	return model.AuditReport{
		AuditID:        p.ID,
		EndUse:         res.EndUse,
		TotalKWh:       res.TotalKWh,
		Score:          res.Score,
		Advice:         ranked.Items,
		AdviceOrigin:   ranked.Origin,
		FallbackReason: string(ranked.Reason),
		GeneratedAt:    time.Now().UTC(),
	}
}

// AuditService runs the residential audit pipeline against stored audits.
type AuditService struct {
	store   store.Store
	ranker  *advice.Ranker
	metrics *metrics.Metrics

	// flight collapses concurrent Generate calls for one audit.
	flight singleflight.Group
}

// NewAuditService creates an AuditService. m may be nil.
func NewAuditService(st store.Store, ranker *advice.Ranker, m *metrics.Metrics) *AuditService {
	return &AuditService{store: st, ranker: ranker, metrics: m}
}

// Submit stores a new audit and generates its report.
func (s *AuditService) Submit(ctx context.Context, p model.AuditProfile) (*model.AuditReport, error) {
	if p.Tariff == nil {
		p.Tariff = &model.Tariff{OffPeak: model.DefaultOffPeakWindow}
	}
	created, err := s.store.CreateAudit(ctx, p)
	if err != nil {
		s.metrics.PipelineRun(metrics.PipelineAudit, err)
		return nil, eris.Wrap(err, "report: create audit")
	}
	return s.Generate(ctx, created.ID)
}

// Generate returns the report for a stored audit. A report that was already
// generated is returned unchanged rather than regenerated. Concurrent calls
// for one audit share a single generation, and a report saved first by
// another process wins over ours.
func (s *AuditService) Generate(ctx context.Context, auditID string) (*model.AuditReport, error) {
	v, err, _ := s.flight.Do(auditID, func() (any, error) {
		return s.generate(ctx, auditID)
	})
	if err != nil {
		return nil, err
	}
	r := *v.(*model.AuditReport)
	return &r, nil
}

func (s *AuditService) generate(ctx context.Context, auditID string) (*model.AuditReport, error) {
	log := zap.L().With(zap.String("audit_id", auditID))

	existing, err := s.store.GetAuditReport(ctx, auditID)
	if err == nil {
		log.Debug("report: reusing stored audit report")
		return existing, nil
	}
	if !store.IsNotFound(err) {
		s.metrics.PipelineRun(metrics.PipelineAudit, err)
		return nil, eris.Wrap(err, "report: get audit report")
	}

	p, err := s.store.GetAudit(ctx, auditID)
	if err != nil {
		s.metrics.PipelineRun(metrics.PipelineAudit, err)
		return nil, eris.Wrap(err, "report: get audit")
	}

	r := BuildAuditReport(ctx, s.ranker, *p)
	if err := s.store.SaveAuditReport(ctx, r); err != nil {
		if store.IsReportExists(err) {
			log.Debug("report: audit report saved concurrently, returning stored copy")
			stored, getErr := s.store.GetAuditReport(ctx, auditID)
			if getErr != nil {
				s.metrics.PipelineRun(metrics.PipelineAudit, getErr)
				return nil, eris.Wrap(getErr, "report: reload audit report")
			}
			return stored, nil
		}
		s.metrics.PipelineRun(metrics.PipelineAudit, err)
		return nil, eris.Wrap(err, "report: save audit report")
	}

	s.metrics.PipelineRun(metrics.PipelineAudit, nil)
	log.Info("report: audit report generated",
		zap.Int("total_kwh", r.TotalKWh),
		zap.Int("score", r.Score),
		zap.String("advice_origin", string(r.AdviceOrigin)),
		zap.Int("advice_items", len(r.Advice)),
	)
	return &r, nil
}
