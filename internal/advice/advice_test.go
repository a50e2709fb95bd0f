package advice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/solarsense-cli/internal/cost"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/resilience"
	"github.com/sells-group/solarsense-cli/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*anthropic.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:      "msg_1",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func sampleProfile() model.AuditProfile {
	liters := 80
	return model.AuditProfile{
		ID:                 "audit-1",
		City:               "Prishtina",
		DwellingType:       model.DwellingApartment,
		HeatingType:        model.HeatingElectric,
		ThermostatSetpoint: 22.5,
		WaterHeater:        model.WaterHeaterElectricTank,
		WaterTankLiters:    &liters,
		Curtains:           model.CurtainsLight,
		InsulationLevel:    model.QualityAverage,
	}
}

const twoActions = `[
 {"code":"A","title":"First","why":"w","how":"h","savings":{"kwh_low":1,"kwh_mid":2,"kwh_high":3,"eur_mid":0.5},"difficulty":1,"comfort":4},
 {"code":"B","title":"Second","why":"w","how":"h","savings":{"kwh_low":1,"kwh_mid":2,"kwh_high":3,"eur_mid":0.5},"difficulty":3,"comfort":2,"safety":"careful"}
]`

func TestFallback_FixedList(t *testing.T) {
	items := Fallback()
	require.Len(t, items, 3)

	assert.Equal(t, "SETPOINT_20_21", items[0].Code)
	assert.Equal(t, model.Savings{KWhLow: 15, KWhMid: 20, KWhHigh: 25, EURMid: 4}, items[0].Savings)
	assert.Equal(t, 1, items[0].Difficulty)
	assert.Equal(t, 3, items[0].Comfort)
	assert.Empty(t, items[0].Safety)

	assert.Equal(t, "CURTAINS_DUSK", items[1].Code)
	assert.Equal(t, model.Savings{KWhLow: 8, KWhMid: 12, KWhHigh: 15, EURMid: 2}, items[1].Savings)
	assert.Equal(t, 1, items[1].Difficulty)
	assert.Equal(t, 5, items[1].Comfort)

	assert.Equal(t, "DHW_OFFPEAK", items[2].Code)
	assert.Equal(t, model.Savings{KWhLow: 10, KWhMid: 18, KWhHigh: 25, EURMid: 3}, items[2].Savings)
	assert.Equal(t, 2, items[2].Difficulty)
	assert.Equal(t, 5, items[2].Comfort)
	assert.Contains(t, items[2].Safety, "licensed electrician")
}

func TestFallback_Idempotent(t *testing.T) {
	a := Fallback()
	a[0].Title = "mutated"
	assert.Equal(t, Fallback(), Fallback())
	assert.NotEqual(t, "mutated", Fallback()[0].Title)
}

func TestParseAdvice(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantErr Reason
	}{
		{name: "bare array", in: twoActions, want: 2},
		{name: "actions object", in: `{"actions":` + twoActions + `}`, want: 2},
		{name: "json fence", in: "```json\n" + twoActions + "\n```", want: 2},
		{name: "plain fence", in: "```\n" + twoActions + "\n```", want: 2},
		{name: "leading prose", in: "Here you go:\n" + twoActions, want: 2},
		{name: "empty text", in: "   ", wantErr: ReasonEmptyResponse},
		{name: "empty array", in: "[]", wantErr: ReasonEmptyResponse},
		{name: "object without actions", in: `{"advice":[]}`, wantErr: ReasonEmptyResponse},
		{name: "not json", in: "sorry, I cannot help", wantErr: ReasonParse},
		{name: "broken json", in: `[{"code":`, wantErr: ReasonParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseAdvice(tt.in)
			if tt.wantErr != "" {
				var se *ServiceError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tt.wantErr, se.Reason)
				return
			}
			require.NoError(t, err)
			require.Len(t, items, tt.want)
			assert.Equal(t, "A", items[0].Code)
			assert.Equal(t, "careful", items[1].Safety)
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(sampleProfile(), 510)

	assert.Contains(t, p, "- Location: Prishtina")
	assert.Contains(t, p, "- Thermostat: 22.5°C")
	assert.Contains(t, p, "- Hot water: electric_tank (80L)")
	assert.Contains(t, p, "- Estimated monthly consumption: 510 kWh")
	assert.Contains(t, p, "8-10 prioritized")
	assert.Contains(t, p, "Boiler temp: 55-65°C only")
	assert.Contains(t, p, "Heating setpoint: 20-21°C recommended")
	assert.Contains(t, p, "Never suggest unsafe DIY electrical work")

	noTank := sampleProfile()
	noTank.WaterHeater = model.WaterHeaterInstant
	noTank.WaterTankLiters = nil
	assert.Contains(t, BuildPrompt(noTank, 400), "- Hot water: instant\n")
}

func TestClaudeSource_Generate(t *testing.T) {
	client := new(mockClient)
	client.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 4096 &&
			req.System != "" &&
			len(req.Messages) == 1 && req.Messages[0].Role == "user"
	})).Return(textResponse(twoActions), nil).Once()

	src := NewClaudeSource(client, ClaudeConfig{Model: "claude-haiku-4-5-20251001"})
	items, err := src.Generate(context.Background(), sampleProfile(), 510)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	client.AssertExpectations(t)
}

func TestClaudeSource_RecordsCost(t *testing.T) {
	resp := textResponse(twoActions)
	resp.Usage = anthropic.TokenUsage{InputTokens: 1200, OutputTokens: 800}

	client := new(mockClient)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(resp, nil).Once()

	reg := prometheus.NewRegistry()
	src := NewClaudeSource(client, ClaudeConfig{
		Model:   "claude-haiku-4-5-20251001",
		Pricing: cost.NewCalculator(cost.DefaultRates()),
		Metrics: metrics.New(reg),
	})
	_, err := src.Generate(context.Background(), sampleProfile(), 510)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	var spent float64
	for _, mf := range families {
		if mf.GetName() == "solarsense_advice_cost_usd_total" {
			spent = mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.InDelta(t, 0.0052, spent, 1e-9)
}

func TestClaudeSource_Failures(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		_, err := NewClaudeSource(nil, ClaudeConfig{Model: "m"}).Generate(context.Background(), sampleProfile(), 1)
		assert.Equal(t, ReasonNotConfigured, classify(err))
	})

	t.Run("request error", func(t *testing.T) {
		client := new(mockClient)
		client.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: refused"))
		_, err := NewClaudeSource(client, ClaudeConfig{Model: "m"}).Generate(context.Background(), sampleProfile(), 1)
		assert.Equal(t, ReasonRequest, classify(err))
	})

	t.Run("empty reply", func(t *testing.T) {
		client := new(mockClient)
		client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(""), nil)
		_, err := NewClaudeSource(client, ClaudeConfig{Model: "m"}).Generate(context.Background(), sampleProfile(), 1)
		assert.Equal(t, ReasonEmptyResponse, classify(err))
	})

	t.Run("unparseable reply", func(t *testing.T) {
		client := new(mockClient)
		client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse("no json here"), nil)
		_, err := NewClaudeSource(client, ClaudeConfig{Model: "m"}).Generate(context.Background(), sampleProfile(), 1)
		assert.Equal(t, ReasonParse, classify(err))
	})
}

func TestClaudeSource_RateLimitHonoursContext(t *testing.T) {
	client := new(mockClient)
	client.On("CreateMessage", mock.Anything, mock.Anything).Return(textResponse(twoActions), nil).Once()
	src := NewClaudeSource(client, ClaudeConfig{Model: "m", RequestsPerMinute: 1})

	_, err := src.Generate(context.Background(), sampleProfile(), 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = src.Generate(ctx, sampleProfile(), 1)
	assert.Equal(t, ReasonRequest, classify(err))
	client.AssertNumberOfCalls(t, "CreateMessage", 1)
}

func TestRanker_ServiceOrderPreserved(t *testing.T) {
	items, err := ParseAdvice(twoActions)
	require.NoError(t, err)
	// Reverse so the harder action comes first; the ranker must not re-sort.
	items[0], items[1] = items[1], items[0]

	m := metrics.New(prometheus.NewRegistry())
	r := NewRanker(&StubSource{Items: items}, WithMetrics(m))
	res := r.Rank(context.Background(), sampleProfile(), 510)

	assert.Equal(t, model.AdviceOriginService, res.Origin)
	assert.Empty(t, res.Reason)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "B", res.Items[0].Code)
	assert.Equal(t, "A", res.Items[1].Code)
}

func TestRanker_FallbackReasons(t *testing.T) {
	tests := []struct {
		name   string
		source Source
		want   Reason
	}{
		{"nil source", nil, ReasonNotConfigured},
		{"stub without items", &StubSource{}, ReasonNotConfigured},
		{"parse failure", &StubSource{Err: &ServiceError{Reason: ReasonParse}}, ReasonParse},
		{"plain error", &StubSource{Err: errors.New("boom")}, ReasonRequest},
		{"empty list", emptySource{}, ReasonEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewRanker(tt.source).Rank(context.Background(), sampleProfile(), 510)
			assert.Equal(t, model.AdviceOriginFallback, res.Origin)
			assert.Equal(t, tt.want, res.Reason)
			assert.Equal(t, Fallback(), res.Items)
		})
	}
}

type emptySource struct{}

func (emptySource) Generate(context.Context, model.AuditProfile, int) ([]model.AdviceItem, error) {
	return []model.AdviceItem{}, nil
}

func TestRanker_CircuitOpens(t *testing.T) {
	src := &StubSource{Err: serviceErr(ReasonRequest, errors.New("timeout"))}
	r := NewRanker(src, WithBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
	}))

	for range 2 {
		res := r.Rank(context.Background(), sampleProfile(), 510)
		assert.Equal(t, ReasonRequest, res.Reason)
	}
	assert.Equal(t, resilience.Open, r.CircuitState())

	res := r.Rank(context.Background(), sampleProfile(), 510)
	assert.Equal(t, ReasonCircuitOpen, res.Reason)
	assert.Equal(t, Fallback(), res.Items)
	assert.Equal(t, 2, src.Calls())
}

func TestRanker_NotConfiguredDoesNotTrip(t *testing.T) {
	src := &StubSource{}
	r := NewRanker(src, WithBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1}))
	for range 3 {
		res := r.Rank(context.Background(), sampleProfile(), 510)
		assert.Equal(t, ReasonNotConfigured, res.Reason)
	}
	assert.Equal(t, resilience.Closed, r.CircuitState())
	assert.Equal(t, 3, src.Calls())
}

func TestRanker_Timeout(t *testing.T) {
	r := NewRanker(slowSource{}, WithTimeout(10*time.Millisecond))
	res := r.Rank(context.Background(), sampleProfile(), 510)
	assert.Equal(t, model.AdviceOriginFallback, res.Origin)
	assert.Equal(t, ReasonRequest, res.Reason)
}

type slowSource struct{}

func (slowSource) Generate(ctx context.Context, _ model.AuditProfile, _ int) ([]model.AdviceItem, error) {
	<-ctx.Done()
	return nil, serviceErr(ReasonRequest, ctx.Err())
}

func TestRanker_FallbackIsProfileIndependent(t *testing.T) {
	r := NewRanker(nil)
	a := sampleProfile()
	b := sampleProfile()
	b.ThermostatSetpoint = 26
	b.DwellingType = model.DwellingHouse
	assert.Equal(t, r.Rank(context.Background(), a, 510).Items, r.Rank(context.Background(), b, 990).Items)
}

func TestCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	all := c.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].Difficulty, all[i].Difficulty)
	}

	dhw, ok := c.Get("DHW_OFFPEAK")
	require.True(t, ok)
	assert.Equal(t, 18.0, dhw.BaseSavings.KWhMid)
	assert.NotEmpty(t, dhw.SafetyNotes)

	_, ok = c.Get("NOPE")
	assert.False(t, ok)
}

func TestCatalog_Search(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	hits := c.Search("THERMOSTAT")
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Contains(t, h.Title+h.Code, "hermostat")
	}

	byCode := c.Search("dhw_off")
	require.Len(t, byCode, 1)
	assert.Equal(t, "DHW_OFFPEAK", byCode[0].Code)

	assert.Len(t, c.Search("  "), len(c.All()))
	assert.Empty(t, c.Search("xyzzy"))
}

func TestParseCatalog_Errors(t *testing.T) {
	_, err := ParseCatalog([]byte("actions: [oops"))
	require.Error(t, err)

	_, err = ParseCatalog([]byte("actions:\n  - title: no code\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no code")
}
