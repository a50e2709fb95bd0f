package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/solarsense-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testProfile() model.AuditProfile {
	liters := 120
	return model.AuditProfile{
		UserID:             "user-1",
		City:               "Prizren",
		DwellingType:       model.DwellingHouse,
		RoofType:           model.RoofSloped,
		HeatingType:        model.HeatingPellet,
		ThermostatSetpoint: 22,
		WaterHeater:        model.WaterHeaterElectricTank,
		WaterTankLiters:    &liters,
		Curtains:           model.CurtainsHeavy,
		InsulationLevel:    model.QualityAverage,
		Tariff:             &model.Tariff{OffPeak: model.DefaultOffPeakWindow},
	}
}

func TestSQLite_MigrateIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Ping(context.Background()))
}

// --- Audits ---

func TestSQLite_Audit_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateAudit(ctx, testProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := st.GetAudit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, model.DwellingHouse, got.DwellingType)
	require.NotNil(t, got.WaterTankLiters)
	assert.Equal(t, 120, *got.WaterTankLiters)
	assert.Equal(t, model.DefaultOffPeakWindow, got.Tariff.OffPeak)
}

func TestSQLite_Audit_KeepsCallerID(t *testing.T) {
	st := newTestSQLiteStore(t)
	p := testProfile()
	p.ID = "fixed-id"

	created, err := st.CreateAudit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", created.ID)
}

func TestSQLite_Audit_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetAudit(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLite_AuditReport(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateAudit(ctx, testProfile())
	require.NoError(t, err)

	_, err = st.GetAuditReport(ctx, created.ID)
	assert.True(t, IsNotFound(err), "no report saved yet")

	report := model.AuditReport{
		AuditID:      created.ID,
		EndUse:       model.EndUseBreakdown{HeatingKWh: 477, DHWKWh: 72, AppliancesKWh: 150},
		TotalKWh:     699,
		Score:        85,
		Advice:       []model.AdviceItem{{Code: "SETPOINT_20_21", Difficulty: 1, Comfort: 3}},
		AdviceOrigin: model.AdviceOriginFallback,
	}
	require.NoError(t, st.SaveAuditReport(ctx, report))

	got, err := st.GetAuditReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 699, got.TotalKWh)
	assert.Equal(t, 85, got.Score)
	assert.Equal(t, model.AdviceOriginFallback, got.AdviceOrigin)
	require.Len(t, got.Advice, 1)
	assert.Equal(t, "SETPOINT_20_21", got.Advice[0].Code)
}

func TestSQLite_SaveAuditReport_UnknownAudit(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.SaveAuditReport(context.Background(), model.AuditReport{AuditID: "missing"})
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLite_SaveAuditReport_WritesOnce(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateAudit(ctx, testProfile())
	require.NoError(t, err)

	first := model.AuditReport{AuditID: created.ID, Score: 90, AdviceOrigin: model.AdviceOriginService}
	require.NoError(t, st.SaveAuditReport(ctx, first))

	second := model.AuditReport{AuditID: created.ID, Score: 40, AdviceOrigin: model.AdviceOriginFallback}
	err = st.SaveAuditReport(ctx, second)
	require.Error(t, err)
	assert.True(t, IsReportExists(err))
	assert.False(t, IsNotFound(err))

	got, err := st.GetAuditReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, got.Score)
	assert.Equal(t, model.AdviceOriginService, got.AdviceOrigin)
}

// --- Solar assessments ---

func TestSQLite_SolarAssessment(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := model.SolarAssessment{
		Input: model.AssessmentInput{City: "Gjakova", DwellingType: model.DwellingApartment, RoofType: model.RoofFlat},
		Potential: model.SolarSizing{
			Strategy: model.SizingProfile, SystemSizeKW: 4.6, AnnualProductionKWh: 5244,
		},
		Economics: model.Economics{CostLowEUR: 4140, CostHighEUR: 5520, AnnualSavingsEUR: 629, PaybackYears: 7.7, CO2TonsPerYear: 3.1},
		Battery:   &model.BatteryRecommendation{RecommendedKWh: 7},
	}
	created, err := st.CreateSolarAssessment(ctx, a)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := st.GetSolarAssessment(ctx, created.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.6, got.Potential.SystemSizeKW, 1e-9)
	assert.Equal(t, 629, got.Economics.AnnualSavingsEUR)
	require.NotNil(t, got.Battery)
	assert.InDelta(t, 7.0, got.Battery.RecommendedKWh, 1e-9)

	_, err = st.GetSolarAssessment(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

// --- Leads, site visits and reports ---

func createTestLead(t *testing.T, st Store) *model.Lead {
	t.Helper()
	l, err := st.CreateLead(context.Background(), model.Lead{
		Name:             "Arta Krasniqi",
		Phone:            "+383 44 123 456",
		City:             "Prishtina",
		BillRange:        model.Bill60To100,
		RoughEstimateEUR: 400,
	})
	require.NoError(t, err)
	return l
}

func TestSQLite_Lead(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	l := createTestLead(t, st)
	assert.Equal(t, model.LeadStatusNew, l.Status)

	got, err := st.GetLead(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "Arta Krasniqi", got.Name)
	assert.Equal(t, model.Bill60To100, got.BillRange)
	assert.Equal(t, 400, got.RoughEstimateEUR)
	assert.Empty(t, got.Email)

	require.NoError(t, st.UpdateLeadStatus(ctx, l.ID, model.LeadStatusVisited))
	got, err = st.GetLead(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusVisited, got.Status)

	err = st.UpdateLeadStatus(ctx, "missing", model.LeadStatusVisited)
	assert.True(t, IsNotFound(err))
}

func TestSQLite_SiteVisits_Latest(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	l := createTestLead(t, st)

	_, err := st.LatestSiteVisit(ctx, l.ID)
	assert.True(t, IsNotFound(err))

	first, err := st.CreateSiteVisit(ctx, model.SiteVisitChecklist{
		LeadID: l.ID, Orientation: model.OrientationEast, ReadinessScore: 80,
	})
	require.NoError(t, err)
	second, err := st.CreateSiteVisit(ctx, model.SiteVisitChecklist{
		LeadID: l.ID, Orientation: model.OrientationSouth, ReadinessScore: 93,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	latest, err := st.LatestSiteVisit(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, model.OrientationSouth, latest.Orientation)
}

func TestSQLite_SiteReports_Latest(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	l := createTestLead(t, st)

	visit, err := st.CreateSiteVisit(ctx, model.SiteVisitChecklist{LeadID: l.ID, ReadinessScore: 93})
	require.NoError(t, err)

	_, err = st.LatestSiteReport(ctx, l.ID)
	assert.True(t, IsNotFound(err))

	r, err := st.CreateSiteReport(ctx, model.SiteReport{
		LeadID:         l.ID,
		SiteVisitID:    visit.ID,
		ReadinessScore: 93,
		Sizing:         model.SolarSizing{Strategy: model.SizingConsumption, SystemSizeKW: 3.5, AnnualProductionKWh: 3780},
		Suggestions:    []model.FieldSuggestion{{Title: "Optimize shading", When: "Before install"}},
	})
	require.NoError(t, err)

	got, err := st.LatestSiteReport(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.Equal(t, visit.ID, got.SiteVisitID)
	assert.InDelta(t, 3780, got.Sizing.AnnualProductionKWh, 1e-9)
	require.Len(t, got.Suggestions, 1)
}

func TestSQLite_RecordSiteVisit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	l := createTestLead(t, st)

	visit, r, err := st.RecordSiteVisit(ctx,
		model.SiteVisitChecklist{LeadID: l.ID, ReadinessScore: 93},
		model.SiteReport{ReadinessScore: 93},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, visit.ID)
	assert.Equal(t, visit.ID, r.SiteVisitID)
	assert.Equal(t, l.ID, r.LeadID)

	got, err := st.LatestSiteReport(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)

	lead, err := st.GetLead(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeadStatusReported, lead.Status)
}

func TestSQLite_RecordSiteVisit_RollsBack(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, _, err := st.RecordSiteVisit(ctx,
		model.SiteVisitChecklist{LeadID: "missing", ReadinessScore: 50},
		model.SiteReport{ReadinessScore: 50},
	)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = st.LatestSiteVisit(ctx, "missing")
	assert.True(t, IsNotFound(err))
	_, err = st.LatestSiteReport(ctx, "missing")
	assert.True(t, IsNotFound(err))
}

// --- Action plans ---

func TestSQLite_Plan(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	plan, err := st.ListPlan(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, plan)

	e, err := st.AddToPlan(ctx, "user-1", "LED")
	require.NoError(t, err)
	assert.Equal(t, "user-1", e.UserID)
	assert.Equal(t, "LED", e.ActionCode)
	assert.False(t, e.AddedAt.IsZero())

	_, err = st.AddToPlan(ctx, "user-1", "CURTAINS_DUSK")
	require.NoError(t, err)
	_, err = st.AddToPlan(ctx, "user-2", "LED")
	require.NoError(t, err)

	// Adding twice keeps one entry and the original timestamp.
	again, err := st.AddToPlan(ctx, "user-1", "LED")
	require.NoError(t, err)
	assert.True(t, e.AddedAt.Equal(again.AddedAt))

	plan, err = st.ListPlan(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, "LED", plan[0].ActionCode)
	assert.Equal(t, "CURTAINS_DUSK", plan[1].ActionCode)

	require.NoError(t, st.RemoveFromPlan(ctx, "user-1", "LED"))
	err = st.RemoveFromPlan(ctx, "user-1", "LED")
	assert.True(t, IsNotFound(err))

	plan, err = st.ListPlan(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "CURTAINS_DUSK", plan[0].ActionCode)

	other, err := st.ListPlan(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
