package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// Pool is the subset of *pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// pgExecer is satisfied by Pool and pgx.Tx.
type pgExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id    TEXT,
	profile    JSONB NOT NULL,
	report     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS solar_assessments (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	audit_id   TEXT,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id                     TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name                   TEXT NOT NULL,
	phone                  TEXT NOT NULL,
	email                  TEXT,
	city                   TEXT,
	address                TEXT,
	preferred_contact_time TEXT,
	bill_range             TEXT NOT NULL,
	rough_estimate_eur     INTEGER NOT NULL,
	status                 TEXT NOT NULL DEFAULT 'new',
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS site_visits (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id         TEXT NOT NULL REFERENCES leads(id),
	checklist       JSONB NOT NULL,
	readiness_score INTEGER NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS solar_reports (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	lead_id       TEXT NOT NULL REFERENCES leads(id),
	site_visit_id TEXT REFERENCES site_visits(id),
	data          JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS user_plan (
	user_id     TEXT NOT NULL,
	action_code TEXT NOT NULL,
	added_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, action_code)
);

CREATE INDEX IF NOT EXISTS idx_audits_user_id ON audits(user_id);
CREATE INDEX IF NOT EXISTS idx_solar_assessments_audit_id ON solar_assessments(audit_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_site_visits_lead_created ON site_visits(lead_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_solar_reports_lead_created ON solar_reports(lead_id, created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// --- Audits ---

func (s *PostgresStore) CreateAudit(ctx context.Context, profile model.AuditProfile) (*model.AuditProfile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal audit profile")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO audits (id, user_id, profile, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		profile.ID, nullable(profile.UserID), profileJSON, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert audit")
	}
	return &profile, nil
}

func (s *PostgresStore) GetAudit(ctx context.Context, auditID string) (*model.AuditProfile, error) {
	var profileJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT profile FROM audits WHERE id = $1`, auditID,
	).Scan(&profileJSON)
	if err != nil {
		return nil, pgNotFound(err, "postgres: get audit %s", auditID)
	}

	var p model.AuditProfile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal audit profile")
	}
	return &p, nil
}

func (s *PostgresStore) SaveAuditReport(ctx context.Context, report model.AuditReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal audit report")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE audits SET report = $1, updated_at = $2 WHERE id = $3 AND report IS NULL`,
		reportJSON, time.Now().UTC(), report.AuditID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update audit report %s", report.AuditID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var hasReport bool
	err = s.pool.QueryRow(ctx,
		`SELECT report IS NOT NULL FROM audits WHERE id = $1`, report.AuditID,
	).Scan(&hasReport)
	if err != nil {
		return pgNotFound(err, "postgres: audit %s", report.AuditID)
	}
	if hasReport {
		return eris.Wrapf(ErrReportExists, "postgres: audit %s", report.AuditID)
	}
	return eris.Errorf("postgres: audit %s report not saved", report.AuditID)
}

func (s *PostgresStore) GetAuditReport(ctx context.Context, auditID string) (*model.AuditReport, error) {
	var reportJSON *[]byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM audits WHERE id = $1`, auditID,
	).Scan(&reportJSON)
	if err != nil {
		return nil, pgNotFound(err, "postgres: get audit report %s", auditID)
	}
	if reportJSON == nil {
		return nil, eris.Wrapf(ErrNotFound, "postgres: audit %s has no report", auditID)
	}

	var r model.AuditReport
	if err := json.Unmarshal(*reportJSON, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal audit report")
	}
	return &r, nil
}

// --- Solar assessments ---

func (s *PostgresStore) CreateSolarAssessment(ctx context.Context, a model.SolarAssessment) (*model.SolarAssessment, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal solar assessment")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO solar_assessments (id, audit_id, data, created_at) VALUES ($1, $2, $3, $4)`,
		a.ID, nullable(a.AuditID), data, a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert solar assessment")
	}
	return &a, nil
}

func (s *PostgresStore) GetSolarAssessment(ctx context.Context, id string) (*model.SolarAssessment, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM solar_assessments WHERE id = $1`, id,
	).Scan(&data)
	if err != nil {
		return nil, pgNotFound(err, "postgres: get solar assessment %s", id)
	}

	var a model.SolarAssessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal solar assessment")
	}
	return &a, nil
}

// --- Leads ---

func (s *PostgresStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	now := time.Now().UTC()
	lead.CreatedAt = now
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, name, phone, email, city, address, preferred_contact_time, bill_range, rough_estimate_eur, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		lead.ID, lead.Name, lead.Phone, nullable(lead.Email), nullable(lead.City), nullable(lead.Address),
		nullable(lead.PreferredContactTime), string(lead.BillRange), lead.RoughEstimateEUR, string(lead.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert lead")
	}
	return &lead, nil
}

func (s *PostgresStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	var l model.Lead
	var email, city, address, contact *string
	var billRange, status string
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, city, address, preferred_contact_time, bill_range, rough_estimate_eur, status, created_at
		 FROM leads WHERE id = $1`, leadID,
	).Scan(&l.ID, &l.Name, &l.Phone, &email, &city, &address, &contact, &billRange, &l.RoughEstimateEUR, &status, &l.CreatedAt)
	if err != nil {
		return nil, pgNotFound(err, "postgres: get lead %s", leadID)
	}
	l.BillRange = model.BillRange(billRange)
	l.Status = model.LeadStatus(status)
	l.Email = deref(email)
	l.City = deref(city)
	l.Address = deref(address)
	l.PreferredContactTime = deref(contact)
	return &l, nil
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "lead %s", leadID)
	}
	return nil
}

// --- Site visits and field reports ---

func (s *PostgresStore) CreateSiteVisit(ctx context.Context, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error) {
	return pgInsertSiteVisit(ctx, s.pool, c)
}

func pgInsertSiteVisit(ctx context.Context, db pgExecer, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal site visit")
	}

	_, err = db.Exec(ctx,
		`INSERT INTO site_visits (id, lead_id, checklist, readiness_score, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.LeadID, data, c.ReadinessScore, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert site visit")
	}
	return &c, nil
}

func (s *PostgresStore) LatestSiteVisit(ctx context.Context, leadID string) (*model.SiteVisitChecklist, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT checklist FROM site_visits WHERE lead_id = $1 ORDER BY created_at DESC LIMIT 1`, leadID,
	).Scan(&data)
	if err != nil {
		return nil, pgNotFound(err, "postgres: latest site visit for lead %s", leadID)
	}

	var c model.SiteVisitChecklist
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal site visit")
	}
	return &c, nil
}

func (s *PostgresStore) CreateSiteReport(ctx context.Context, r model.SiteReport) (*model.SiteReport, error) {
	return pgInsertSiteReport(ctx, s.pool, r)
}

func pgInsertSiteReport(ctx context.Context, db pgExecer, r model.SiteReport) (*model.SiteReport, error) {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal site report")
	}

	_, err = db.Exec(ctx,
		`INSERT INTO solar_reports (id, lead_id, site_visit_id, data, created_at) VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.LeadID, nullable(r.SiteVisitID), data, r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert site report")
	}
	return &r, nil
}

func (s *PostgresStore) RecordSiteVisit(ctx context.Context, c model.SiteVisitChecklist, r model.SiteReport) (*model.SiteVisitChecklist, *model.SiteReport, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: begin record site visit")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	visit, err := pgInsertSiteVisit(ctx, tx, c)
	if err != nil {
		return nil, nil, err
	}

	r.LeadID = visit.LeadID
	r.SiteVisitID = visit.ID
	stored, err := pgInsertSiteReport(ctx, tx, r)
	if err != nil {
		return nil, nil, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = $2 WHERE id = $3`,
		string(model.LeadStatusReported), time.Now().UTC(), visit.LeadID,
	)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "postgres: update lead status %s", visit.LeadID)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, eris.Wrapf(ErrNotFound, "lead %s", visit.LeadID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: commit record site visit")
	}
	return visit, stored, nil
}

func (s *PostgresStore) LatestSiteReport(ctx context.Context, leadID string) (*model.SiteReport, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM solar_reports WHERE lead_id = $1 ORDER BY created_at DESC LIMIT 1`, leadID,
	).Scan(&data)
	if err != nil {
		return nil, pgNotFound(err, "postgres: latest site report for lead %s", leadID)
	}

	var r model.SiteReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal site report")
	}
	return &r, nil
}

// --- Action plans ---

func (s *PostgresStore) AddToPlan(ctx context.Context, userID, actionCode string) (*model.PlanEntry, error) {
	e := model.PlanEntry{UserID: userID, ActionCode: actionCode}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_plan (user_id, action_code, added_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, action_code) DO UPDATE SET action_code = EXCLUDED.action_code
		 RETURNING added_at`,
		userID, actionCode, time.Now().UTC(),
	).Scan(&e.AddedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: add %s to plan of %s", actionCode, userID)
	}
	return &e, nil
}

func (s *PostgresStore) RemoveFromPlan(ctx context.Context, userID, actionCode string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM user_plan WHERE user_id = $1 AND action_code = $2`, userID, actionCode,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: remove %s from plan of %s", actionCode, userID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "plan entry %s/%s", userID, actionCode)
	}
	return nil
}

func (s *PostgresStore) ListPlan(ctx context.Context, userID string) ([]model.PlanEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT action_code, added_at FROM user_plan WHERE user_id = $1 ORDER BY added_at, action_code`, userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list plan of %s", userID)
	}
	defer rows.Close()

	var out []model.PlanEntry
	for rows.Next() {
		e := model.PlanEntry{UserID: userID}
		if err := rows.Scan(&e.ActionCode, &e.AddedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan plan entry")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate plan")
}

// --- helpers ---

func pgNotFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, format, args...)
	}
	return eris.Wrapf(err, format, args...)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
