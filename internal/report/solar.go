package report

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/readiness"
	"github.com/sells-group/solarsense-cli/internal/solar"
	"github.com/sells-group/solarsense-cli/internal/store"
)

// fieldSuggestions are shown on every field report regardless of the visit.
var fieldSuggestions = []model.FieldSuggestion{
	{Title: "Optimize shading", Detail: "Trim nearby trees to increase annual yield.", When: "Before install"},
	{Title: "Seal windows/insulation", Detail: "Improve envelope to reduce overall demand.", When: "Anytime"},
	{Title: "Smart usage shift", Detail: "Run appliances during sunny hours for best self-consumption.", When: "After install"},
}

// FieldSuggestions returns a copy of the fixed field report suggestions.
func FieldSuggestions() []model.FieldSuggestion {
	out := make([]model.FieldSuggestion, len(fieldSuggestions))
	copy(out, fieldSuggestions)
	return out
}

// BuildSolarAssessment runs the self-service path: profile sizing,
// economics, the 25-year projection and a battery recommendation.
func BuildSolarAssessment(p model.AuditProfile) model.SolarAssessment {
	sizing := solar.SizeFromProfile(p.DwellingType, p.RoofType, p.City)
	battery := solar.SizeBattery(sizing.AnnualProductionKWh)

	return model.SolarAssessment{
		AuditID: p.ID,
		Input: model.AssessmentInput{
			City:         p.City,
			Address:      p.Address,
			DwellingType: p.DwellingType,
			RoofType:     p.RoofType,
		},
		Potential:  sizing,
		Economics:  solar.Economics(sizing),
		Projection: solar.Project25Year(sizing.SystemSizeKW),
		Battery:    &battery,
	}
}

// BuildSiteReport runs the field path for a technician checklist.
func BuildSiteReport(c model.SiteVisitChecklist) model.SiteReport {
	sizing := solar.SizeFromConsumption(c.AvgMonthlyKWh, c.Shading)

	return model.SiteReport{
		LeadID:         c.LeadID,
		SiteVisitID:    c.ID,
		ReadinessScore: readiness.Score(c),
		Sizing:         sizing,
		Economics:      solar.Economics(sizing),
		Suggestions:    FieldSuggestions(),
	}
}

// SolarService persists self-service assessments.
type SolarService struct {
	store   store.Store
	metrics *metrics.Metrics
}

// NewSolarService creates a SolarService. m may be nil.
func NewSolarService(st store.Store, m *metrics.Metrics) *SolarService {
	return &SolarService{store: st, metrics: m}
}

// Assess builds and stores an assessment for p.
func (s *SolarService) Assess(ctx context.Context, p model.AuditProfile) (*model.SolarAssessment, error) {
	a, err := s.store.CreateSolarAssessment(ctx, BuildSolarAssessment(p))
	s.metrics.PipelineRun(metrics.PipelineSolar, err)
	if err != nil {
		return nil, eris.Wrap(err, "report: create solar assessment")
	}
	zap.L().Info("report: solar assessment stored",
		zap.String("assessment_id", a.ID),
		zap.Float64("system_size_kw", a.Potential.SystemSizeKW),
		zap.Float64("payback_years", a.Economics.PaybackYears),
	)
	return a, nil
}

// FieldService records site visits and the field reports built from them.
type FieldService struct {
	store   store.Store
	metrics *metrics.Metrics
}

// NewFieldService creates a FieldService. m may be nil.
func NewFieldService(st store.Store, m *metrics.Metrics) *FieldService {
	return &FieldService{store: st, metrics: m}
}

// RecordVisit scores and stores a checklist for a lead, stores the field
// report built from it and marks the lead as reported. The three writes
// commit together.
func (s *FieldService) RecordVisit(ctx context.Context, leadID string, c model.SiteVisitChecklist) (*model.SiteReport, error) {
	r, err := s.recordVisit(ctx, leadID, c)
	s.metrics.PipelineRun(metrics.PipelineSiteVisit, err)
	return r, err
}

func (s *FieldService) recordVisit(ctx context.Context, leadID string, c model.SiteVisitChecklist) (*model.SiteReport, error) {
	if _, err := s.store.GetLead(ctx, leadID); err != nil {
		return nil, eris.Wrap(err, "report: get lead")
	}

	c.LeadID = leadID
	c.ReadinessScore = readiness.Score(c)
	visit, r, err := s.store.RecordSiteVisit(ctx, c, BuildSiteReport(c))
	if err != nil {
		return nil, eris.Wrap(err, "report: record site visit")
	}

	zap.L().Info("report: field report stored",
		zap.String("lead_id", leadID),
		zap.String("site_visit_id", visit.ID),
		zap.Int("readiness_score", r.ReadinessScore),
		zap.Float64("system_size_kw", r.Sizing.SystemSizeKW),
	)
	return r, nil
}

// Latest returns the most recent field report for a lead. When no report
// was stored yet it is built from the latest site visit.
func (s *FieldService) Latest(ctx context.Context, leadID string) (*model.SiteReport, error) {
	r, err := s.store.LatestSiteReport(ctx, leadID)
	if err == nil {
		return r, nil
	}
	if !store.IsNotFound(err) {
		return nil, eris.Wrap(err, "report: latest site report")
	}

	visit, err := s.store.LatestSiteVisit(ctx, leadID)
	if err != nil {
		return nil, eris.Wrap(err, "report: latest site visit")
	}
	built := BuildSiteReport(*visit)
	built.CreatedAt = time.Now().UTC()
	return &built, nil
}
