package plan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/solarsense-cli/internal/advice"
	"github.com/sells-group/solarsense-cli/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "plan.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	catalog, err := advice.LoadCatalog()
	require.NoError(t, err)
	return NewService(st, catalog), st
}

func TestService_AddListRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, "u-1", "setpoint_20_21")
	require.NoError(t, err)
	assert.Equal(t, "SETPOINT_20_21", item.ActionCode)
	assert.Equal(t, "SETPOINT_20_21", item.Action.Code)
	assert.NotEmpty(t, item.Action.Title)
	assert.False(t, item.AddedAt.IsZero())

	_, err = svc.Add(ctx, "u-1", "STANDBY_OFF")
	require.NoError(t, err)

	items, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "SETPOINT_20_21", items[0].ActionCode)
	assert.Equal(t, "STANDBY_OFF", items[1].ActionCode)

	require.NoError(t, svc.Remove(ctx, "u-1", "SETPOINT_20_21"))
	items, err = svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "STANDBY_OFF", items[0].ActionCode)
}

func TestService_AddTwiceKeepsFirstEntry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Add(ctx, "u-1", "CURTAINS_DUSK")
	require.NoError(t, err)
	second, err := svc.Add(ctx, "u-1", "CURTAINS_DUSK")
	require.NoError(t, err)
	assert.True(t, first.AddedAt.Equal(second.AddedAt))

	items, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestService_AddUnknownAction(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Add(context.Background(), "u-1", "NOT_A_CODE")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.True(t, IsInvalid(err))

	_, err = svc.Add(context.Background(), "u-1", "  ")
	assert.True(t, IsInvalid(err))
}

func TestService_UserRequired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, " ", "STANDBY_OFF")
	assert.ErrorIs(t, err, ErrUserRequired)
	_, err = svc.List(ctx, "")
	assert.ErrorIs(t, err, ErrUserRequired)
	assert.ErrorIs(t, svc.Remove(ctx, "", "STANDBY_OFF"), ErrUserRequired)
}

func TestService_RemoveMissing(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Remove(context.Background(), "u-1", "STANDBY_OFF")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
	assert.False(t, IsInvalid(err))
}

func TestService_ListSkipsRetiredActions(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	_, err := st.AddToPlan(ctx, "u-1", "RETIRED_CODE")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u-1", "STANDBY_OFF")
	require.NoError(t, err)

	items, err := svc.List(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "STANDBY_OFF", items[0].ActionCode)
}

func TestService_ListEmpty(t *testing.T) {
	svc, _ := newTestService(t)

	items, err := svc.List(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
