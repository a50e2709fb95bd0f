package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/solarsense-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS audits (
	id         TEXT PRIMARY KEY,
	user_id    TEXT,
	profile    TEXT NOT NULL,
	report     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS solar_assessments (
	id         TEXT PRIMARY KEY,
	audit_id   TEXT,
	data       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	phone                  TEXT NOT NULL,
	email                  TEXT,
	city                   TEXT,
	address                TEXT,
	preferred_contact_time TEXT,
	bill_range             TEXT NOT NULL,
	rough_estimate_eur     INTEGER NOT NULL,
	status                 TEXT NOT NULL DEFAULT 'new',
	created_at             DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at             DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS site_visits (
	id              TEXT PRIMARY KEY,
	lead_id         TEXT NOT NULL REFERENCES leads(id),
	checklist       TEXT NOT NULL,
	readiness_score INTEGER NOT NULL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS solar_reports (
	id            TEXT PRIMARY KEY,
	lead_id       TEXT NOT NULL REFERENCES leads(id),
	site_visit_id TEXT REFERENCES site_visits(id),
	data          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS user_plan (
	user_id     TEXT NOT NULL,
	action_code TEXT NOT NULL,
	added_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, action_code)
);

CREATE INDEX IF NOT EXISTS idx_audits_user_id ON audits(user_id);
CREATE INDEX IF NOT EXISTS idx_solar_assessments_audit_id ON solar_assessments(audit_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_site_visits_lead_id ON site_visits(lead_id, created_at);
CREATE INDEX IF NOT EXISTS idx_solar_reports_lead_id ON solar_reports(lead_id, created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Audits ---

func (s *SQLiteStore) CreateAudit(ctx context.Context, profile model.AuditProfile) (*model.AuditProfile, error) {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	profile.CreatedAt = now

	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal audit profile")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO audits (id, user_id, profile, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		profile.ID, nullString(profile.UserID), string(profileJSON), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert audit")
	}
	return &profile, nil
}

func (s *SQLiteStore) GetAudit(ctx context.Context, auditID string) (*model.AuditProfile, error) {
	var profileJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM audits WHERE id = ?`, auditID,
	).Scan(&profileJSON)
	if err != nil {
		return nil, notFound(err, "sqlite: get audit %s", auditID)
	}

	var p model.AuditProfile
	if err := json.Unmarshal([]byte(profileJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal audit profile")
	}
	return &p, nil
}

func (s *SQLiteStore) SaveAuditReport(ctx context.Context, report model.AuditReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal audit report")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE audits SET report = ?, updated_at = ? WHERE id = ? AND report IS NULL`,
		string(reportJSON), time.Now().UTC(), report.AuditID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update audit report %s", report.AuditID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n > 0 {
		return nil
	}

	var hasReport bool
	err = s.db.QueryRowContext(ctx,
		`SELECT report IS NOT NULL FROM audits WHERE id = ?`, report.AuditID,
	).Scan(&hasReport)
	if err != nil {
		return notFound(err, "sqlite: audit %s", report.AuditID)
	}
	if hasReport {
		return eris.Wrapf(ErrReportExists, "sqlite: audit %s", report.AuditID)
	}
	return eris.Errorf("sqlite: audit %s report not saved", report.AuditID)
}

func (s *SQLiteStore) GetAuditReport(ctx context.Context, auditID string) (*model.AuditReport, error) {
	var reportJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM audits WHERE id = ?`, auditID,
	).Scan(&reportJSON)
	if err != nil {
		return nil, notFound(err, "sqlite: get audit report %s", auditID)
	}
	if !reportJSON.Valid {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: audit %s has no report", auditID)
	}

	var r model.AuditReport
	if err := json.Unmarshal([]byte(reportJSON.String), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal audit report")
	}
	return &r, nil
}

// --- Solar assessments ---

func (s *SQLiteStore) CreateSolarAssessment(ctx context.Context, a model.SolarAssessment) (*model.SolarAssessment, error) {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(a)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal solar assessment")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO solar_assessments (id, audit_id, data, created_at) VALUES (?, ?, ?, ?)`,
		a.ID, nullString(a.AuditID), string(data), a.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert solar assessment")
	}
	return &a, nil
}

func (s *SQLiteStore) GetSolarAssessment(ctx context.Context, id string) (*model.SolarAssessment, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM solar_assessments WHERE id = ?`, id,
	).Scan(&data)
	if err != nil {
		return nil, notFound(err, "sqlite: get solar assessment %s", id)
	}

	var a model.SolarAssessment
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal solar assessment")
	}
	return &a, nil
}

// --- Leads ---

func (s *SQLiteStore) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	lead.ID = uuid.New().String()
	now := time.Now().UTC()
	lead.CreatedAt = now
	if lead.Status == "" {
		lead.Status = model.LeadStatusNew
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (id, name, phone, email, city, address, preferred_contact_time, bill_range, rough_estimate_eur, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.ID, lead.Name, lead.Phone, nullString(lead.Email), nullString(lead.City), nullString(lead.Address),
		nullString(lead.PreferredContactTime), string(lead.BillRange), lead.RoughEstimateEUR, string(lead.Status), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert lead")
	}
	return &lead, nil
}

func (s *SQLiteStore) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	var l model.Lead
	var email, city, address, contact sql.NullString
	var billRange, status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, phone, email, city, address, preferred_contact_time, bill_range, rough_estimate_eur, status, created_at
		 FROM leads WHERE id = ?`, leadID,
	).Scan(&l.ID, &l.Name, &l.Phone, &email, &city, &address, &contact, &billRange, &l.RoughEstimateEUR, &status, &l.CreatedAt)
	if err != nil {
		return nil, notFound(err, "sqlite: get lead %s", leadID)
	}
	l.BillRange = model.BillRange(billRange)
	l.Status = model.LeadStatus(status)
	l.Email = email.String
	l.City = city.String
	l.Address = address.String
	l.PreferredContactTime = contact.String
	return &l, nil
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

// --- Site visits and field reports ---

// sqlExecer is satisfied by *sql.DB and *sql.Tx.
type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) CreateSiteVisit(ctx context.Context, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error) {
	return insertSiteVisit(ctx, s.db, c)
}

func insertSiteVisit(ctx context.Context, db sqlExecer, c model.SiteVisitChecklist) (*model.SiteVisitChecklist, error) {
	c.ID = uuid.New().String()
	c.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(c)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal site visit")
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO site_visits (id, lead_id, checklist, readiness_score, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.LeadID, string(data), c.ReadinessScore, c.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert site visit")
	}
	return &c, nil
}

func (s *SQLiteStore) LatestSiteVisit(ctx context.Context, leadID string) (*model.SiteVisitChecklist, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT checklist FROM site_visits WHERE lead_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, leadID,
	).Scan(&data)
	if err != nil {
		return nil, notFound(err, "sqlite: latest site visit for lead %s", leadID)
	}

	var c model.SiteVisitChecklist
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal site visit")
	}
	return &c, nil
}

func (s *SQLiteStore) CreateSiteReport(ctx context.Context, r model.SiteReport) (*model.SiteReport, error) {
	return insertSiteReport(ctx, s.db, r)
}

func insertSiteReport(ctx context.Context, db sqlExecer, r model.SiteReport) (*model.SiteReport, error) {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal site report")
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO solar_reports (id, lead_id, site_visit_id, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.LeadID, nullString(r.SiteVisitID), string(data), r.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert site report")
	}
	return &r, nil
}

func (s *SQLiteStore) RecordSiteVisit(ctx context.Context, c model.SiteVisitChecklist, r model.SiteReport) (*model.SiteVisitChecklist, *model.SiteReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: begin record site visit")
	}
	defer tx.Rollback() //nolint:errcheck

	visit, err := insertSiteVisit(ctx, tx, c)
	if err != nil {
		return nil, nil, err
	}

	r.LeadID = visit.LeadID
	r.SiteVisitID = visit.ID
	stored, err := insertSiteReport(ctx, tx, r)
	if err != nil {
		return nil, nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE leads SET status = ?, updated_at = ? WHERE id = ?`,
		string(model.LeadStatusReported), time.Now().UTC(), visit.LeadID,
	)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "sqlite: update lead status %s", visit.LeadID)
	}
	if err := checkRowsAffected(res, "lead", visit.LeadID); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: commit record site visit")
	}
	return visit, stored, nil
}

func (s *SQLiteStore) LatestSiteReport(ctx context.Context, leadID string) (*model.SiteReport, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM solar_reports WHERE lead_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, leadID,
	).Scan(&data)
	if err != nil {
		return nil, notFound(err, "sqlite: latest site report for lead %s", leadID)
	}

	var r model.SiteReport
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal site report")
	}
	return &r, nil
}

// --- Action plans ---

func (s *SQLiteStore) AddToPlan(ctx context.Context, userID, actionCode string) (*model.PlanEntry, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_plan (user_id, action_code, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, action_code) DO NOTHING`,
		userID, actionCode, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: add %s to plan of %s", actionCode, userID)
	}

	e := model.PlanEntry{UserID: userID, ActionCode: actionCode}
	err = s.db.QueryRowContext(ctx,
		`SELECT added_at FROM user_plan WHERE user_id = ? AND action_code = ?`, userID, actionCode,
	).Scan(&e.AddedAt)
	if err != nil {
		return nil, notFound(err, "sqlite: get plan entry %s/%s", userID, actionCode)
	}
	return &e, nil
}

func (s *SQLiteStore) RemoveFromPlan(ctx context.Context, userID, actionCode string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM user_plan WHERE user_id = ? AND action_code = ?`, userID, actionCode,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: remove %s from plan of %s", actionCode, userID)
	}
	return checkRowsAffected(res, "plan entry", userID+"/"+actionCode)
}

func (s *SQLiteStore) ListPlan(ctx context.Context, userID string) ([]model.PlanEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action_code, added_at FROM user_plan WHERE user_id = ? ORDER BY added_at, rowid`, userID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list plan of %s", userID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.PlanEntry
	for rows.Next() {
		e := model.PlanEntry{UserID: userID}
		if err := rows.Scan(&e.ActionCode, &e.AddedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan plan entry")
		}
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate plan")
}

// --- helpers ---

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

// notFound maps a missing row to ErrNotFound and wraps everything else.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return eris.Wrapf(ErrNotFound, format, args...)
	}
	return eris.Wrapf(err, format, args...)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
