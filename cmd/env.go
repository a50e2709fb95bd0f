package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/cost"
	"github.com/sells-group/solarsense-cli/internal/metrics"
	"github.com/sells-group/solarsense-cli/internal/report"
	"github.com/sells-group/solarsense-cli/internal/resilience"
	"github.com/sells-group/solarsense-cli/internal/store"
	anthropicpkg "github.com/sells-group/solarsense-cli/pkg/anthropic"
)

// appEnv holds the store and services shared by the commands.
type appEnv struct {
	Store   store.Store
	Ranker  *advice.Ranker
	Metrics *metrics.Metrics
	Audits  *report.AuditService
	Solar   *report.SolarService
	Field   *report.FieldService
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured store.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "solarsense.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("postgres store requires store.database_url (SOLARSENSE_STORE_DATABASE_URL)")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initRanker builds the advice ranker. Offline runs, and runs without an
// Anthropic key, always serve the fallback list.
func initRanker(offline bool, m *metrics.Metrics) *advice.Ranker {
	opts := []advice.RankerOption{
		advice.WithMetrics(m),
		advice.WithTimeout(time.Duration(cfg.Advice.TimeoutSecs) * time.Second),
		advice.WithBreaker(resilience.FromSettings(cfg.Advice.FailureThreshold, cfg.Advice.ResetTimeoutSecs)),
	}

	if offline || cfg.Anthropic.Key == "" {
		zap.L().Debug("advice service disabled, serving fallback advice",
			zap.Bool("offline", offline),
		)
		return advice.NewRanker(nil, opts...)
	}

	client := anthropicpkg.NewClient(cfg.Anthropic.Key)
	source := advice.NewClaudeSource(client, advice.ClaudeConfig{
		Model:             cfg.Anthropic.Model,
		MaxTokens:         cfg.Anthropic.MaxTokens,
		RequestsPerMinute: cfg.Advice.RequestsPerMinute,
		Pricing:           cost.NewCalculator(cost.DefaultRates()),
		Metrics:           m,
	})
	return advice.NewRanker(source, opts...)
}

// initEnv validates the config for mode, opens and migrates the store and
// wires the services. Callers should defer env.Close().
func initEnv(ctx context.Context, mode string, offline bool) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return newAppEnv(st, initRanker(offline, metrics.Default()), metrics.Default()), nil
}

func newAppEnv(st store.Store, ranker *advice.Ranker, m *metrics.Metrics) *appEnv {
	return &appEnv{
		Store:   st,
		Ranker:  ranker,
		Metrics: m,
		Audits:  report.NewAuditService(st, ranker, m),
		Solar:   report.NewSolarService(st, m),
		Field:   report.NewFieldService(st, m),
	}
}

// readJSONFile decodes the JSON document at path into v. A path of "-"
// reads standard input.
func readJSONFile(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

// writeJSON pretty-prints v to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
