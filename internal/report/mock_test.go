package report

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateAudit(ctx context.Context, p model.AuditProfile) (*model.AuditProfile, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditProfile), args.Error(1)
}

func (m *mockStore) GetAudit(ctx context.Context, auditID string) (*model.AuditProfile, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditProfile), args.Error(1)
}

func (m *mockStore) SaveAuditReport(ctx context.Context, r model.AuditReport) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockStore) GetAuditReport(ctx context.Context, auditID string) (*model.AuditReport, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuditReport), args.Error(1)
}

func (m *mockStore) CreateSolarAssessment(ctx context.Context, a model.SolarAssessment) (*model.SolarAssessment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SolarAssessment), args.Error(1)
}

func (m *mockStore) GetSolarAssessment(ctx context.Context, id string) (*model.SolarAssessment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SolarAssessment), args.Error(1)
}

func (m *mockStore) CreateLead(ctx context.Context, l model.Lead) (*model.Lead, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Lead), args.Error(1)
}

func (m *mockStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	args := m.Called(ctx, leadID, status)
	return args.Error(0)
}

func (m *mockStore) CreateSiteVisit(ctx context.Context, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteVisitChecklist), args.Error(1)
}

func (m *mockStore) LatestSiteVisit(ctx context.Context, leadID string) (*model.SiteVisitChecklist, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteVisitChecklist), args.Error(1)
}

func (m *mockStore) CreateSiteReport(ctx context.Context, r model.SiteReport) (*model.SiteReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteReport), args.Error(1)
}

func (m *mockStore) LatestSiteReport(ctx context.Context, leadID string) (*model.SiteReport, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteReport), args.Error(1)
}

func (m *mockStore) RecordSiteVisit(ctx context.Context, c model.SiteVisitChecklist, r model.SiteReport) (*model.SiteVisitChecklist, *model.SiteReport, error) {
	args := m.Called(ctx, c, r)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.SiteVisitChecklist), args.Get(1).(*model.SiteReport), args.Error(2)
}

func (m *mockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) AddToPlan(ctx context.Context, userID, actionCode string) (*model.PlanEntry, error) {
	args := m.Called(ctx, userID, actionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlanEntry), args.Error(1)
}

func (m *mockStore) RemoveFromPlan(ctx context.Context, userID, actionCode string) error {
	return m.Called(ctx, userID, actionCode).Error(0)
}

func (m *mockStore) ListPlan(ctx context.Context, userID string) ([]model.PlanEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlanEntry), args.Error(1)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}
