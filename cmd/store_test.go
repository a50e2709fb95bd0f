package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/config"
	"github.com/sells-group/solarsense-cli/internal/model"
	"github.com/sells-group/solarsense-cli/internal/plan"
)

func TestInitStore_SQLite(t *testing.T) {
	tmpDir := t.TempDir()
	dsn := filepath.Join(tmpDir, "test.db")

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: dsn,
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck
}

func TestInitStore_SQLiteDefaultDSN(t *testing.T) {
	// When DatabaseURL is empty, initStore should default to "solarsense.db".
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: "",
		},
	}

	st, err := initStore(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st)
	defer st.Close() //nolint:errcheck

	_, statErr := os.Stat(filepath.Join(tmpDir, "solarsense.db"))
	assert.NoError(t, statErr)
}

func TestInitStore_PostgresRequiresURL(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "postgres",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url")
}

func TestInitStore_UnknownDriver(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver: "mysql",
		},
	}

	st, err := initStore(context.Background())
	assert.Nil(t, st)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitRanker_WithoutKeyFallsBack(t *testing.T) {
	cfg = &config.Config{}
	cfg.Advice.FailureThreshold = 3

	r := initRanker(false, nil)
	res := r.Rank(context.Background(), model.AuditProfile{}, 500)
	assert.Equal(t, model.AdviceOriginFallback, res.Origin)
	assert.Equal(t, advice.ReasonNotConfigured, res.Reason)
}

func TestInitRanker_OfflineIgnoresKey(t *testing.T) {
	cfg = &config.Config{}
	cfg.Anthropic.Key = "sk-ant-test"
	cfg.Anthropic.Model = "claude-haiku-4-5-20251001"

	r := initRanker(true, nil)
	res := r.Rank(context.Background(), model.AuditProfile{}, 500)
	assert.Equal(t, advice.ReasonNotConfigured, res.Reason)
}

func TestInitEnv_MigratesStore(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "env.db"),
		},
	}
	cfg.Anthropic.Model = "claude-haiku-4-5-20251001"

	env, err := initEnv(context.Background(), config.ModeAudit, true)
	require.NoError(t, err)
	defer env.Close()

	rep, err := env.Audits.Submit(context.Background(), model.AuditProfile{DwellingType: model.DwellingHouse})
	require.NoError(t, err)
	assert.NotEmpty(t, rep.AuditID)
}

func TestInitEnv_InvalidConfig(t *testing.T) {
	cfg = &config.Config{Store: config.StoreConfig{Driver: "mysql", DatabaseURL: "x"}}

	_, err := initEnv(context.Background(), config.ModeAudit, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestReadJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"city":"Prizren","dwelling_type":"house"}`), 0o644))

	var p model.AuditProfile
	require.NoError(t, readJSONFile(path, &p))
	assert.Equal(t, "Prizren", p.City)
	assert.Equal(t, model.DwellingHouse, p.DwellingType)

	err := readJSONFile(filepath.Join(t.TempDir(), "missing.json"), &p)
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	err = readJSONFile(bad, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestPrintActions(t *testing.T) {
	catalog, err := advice.LoadCatalog()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, printActions(&buf, catalog.All()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "CODE"))
	assert.Len(t, lines, len(catalog.All())+1)
}

func TestPrintPlan(t *testing.T) {
	catalog, err := advice.LoadCatalog()
	require.NoError(t, err)
	action, ok := catalog.Get("STANDBY_OFF")
	require.True(t, ok)

	items := []plan.Item{{
		PlanEntry: model.PlanEntry{UserID: "u-1", ActionCode: "STANDBY_OFF", AddedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		Action:    action,
	}}

	var buf bytes.Buffer
	require.NoError(t, printPlan(&buf, items))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "CODE"))
	assert.Contains(t, lines[1], "STANDBY_OFF")
	assert.Contains(t, lines[1], "2026-03-01")
}

func TestWithPlan_AddListRemove(t *testing.T) {
	cfg = &config.Config{
		Store: config.StoreConfig{
			Driver:      "sqlite",
			DatabaseURL: filepath.Join(t.TempDir(), "plan.db"),
		},
	}
	ctx := context.Background()
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)

	require.NoError(t, withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
		_, err := svc.Add(ctx, "u-1", "STANDBY_OFF")
		return err
	}))

	var items []plan.Item
	require.NoError(t, withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
		var err error
		items, err = svc.List(ctx, "u-1")
		return err
	}))
	require.Len(t, items, 1)
	assert.Equal(t, "STANDBY_OFF", items[0].ActionCode)

	err := withPlan(cmd, func(ctx context.Context, svc *plan.Service) error {
		return svc.Remove(ctx, "u-1", "CURTAINS_DUSK")
	})
	assert.Error(t, err)
}
