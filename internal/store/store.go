// Package store persists audits, solar assessments, leads, site visits and
// field reports.
package store

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrReportExists is returned by SaveAuditReport when the audit already has
// a report. The stored report is left untouched.
var ErrReportExists = eris.New("store: audit report already exists")

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsReportExists reports whether err wraps ErrReportExists.
func IsReportExists(err error) bool {
	return errors.Is(err, ErrReportExists)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

// Store defines the persistence interface for the audit and solar pipelines.
type Store interface {
	// Audits
	CreateAudit(ctx context.Context, profile model.AuditProfile) (*model.AuditProfile, error)
	GetAudit(ctx context.Context, auditID string) (*model.AuditProfile, error)
	// SaveAuditReport appends the derived fields to an audit. It only writes
	// once per audit; later calls fail with ErrReportExists.
	SaveAuditReport(ctx context.Context, report model.AuditReport) error
	// GetAuditReport returns ErrNotFound until a report has been saved.
	GetAuditReport(ctx context.Context, auditID string) (*model.AuditReport, error)

	// Solar assessments
	CreateSolarAssessment(ctx context.Context, a model.SolarAssessment) (*model.SolarAssessment, error)
	GetSolarAssessment(ctx context.Context, id string) (*model.SolarAssessment, error)

	// Leads
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error

	// Site visits and field reports
	CreateSiteVisit(ctx context.Context, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error)
	LatestSiteVisit(ctx context.Context, leadID string) (*model.SiteVisitChecklist, error)
	CreateSiteReport(ctx context.Context, r model.SiteReport) (*model.SiteReport, error)
	LatestSiteReport(ctx context.Context, leadID string) (*model.SiteReport, error)
	// RecordSiteVisit stores a visit, the report built from it and the lead's
	// reported status in one transaction. r is linked to the stored visit.
	RecordSiteVisit(ctx context.Context, c model.SiteVisitChecklist, r model.SiteReport) (*model.SiteVisitChecklist, *model.SiteReport, error)

	// Action plans, keyed by user and catalog action code
	AddToPlan(ctx context.Context, userID, actionCode string) (*model.PlanEntry, error)
	RemoveFromPlan(ctx context.Context, userID, actionCode string) error
	ListPlan(ctx context.Context, userID string) ([]model.PlanEntry, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}
