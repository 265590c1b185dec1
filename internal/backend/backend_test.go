package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"nippo/internal/config"
	"nippo/internal/core"
	"nippo/internal/storage"
	"nippo/internal/storage/memory"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.DataBackend = backend
	cfg.SQLiteDBPath = filepath.Join(t.TempDir(), "nippo.db")
	return cfg
}

func TestType(t *testing.T) {
	require.True(t, SQLite.IsValid())
	require.True(t, Memory.IsValid())
	require.False(t, Type("sheets").IsValid())
	require.Equal(t, []Type{SQLite, Memory}, Types())
}

func TestOpenStore(t *testing.T) {
	st, err := OpenStore(testConfig(t, "memory"))
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, st)
	require.NoError(t, st.Close())

	st, err = OpenStore(testConfig(t, "sqlite"))
	require.NoError(t, err)
	require.IsType(t, &storage.SQLiteRepository{}, st)
	require.NoError(t, st.Ping(context.Background()))
	require.NoError(t, st.Close())

	_, err = OpenStore(testConfig(t, "sheets"))
	require.Error(t, err)
}

func TestOpenWithoutAMQP(t *testing.T) {
	b, err := Open(testConfig(t, "sqlite"))
	require.NoError(t, err)
	require.Nil(t, b.Events)

	ctx := context.Background()
	rep, err := b.Service.Submit(ctx, core.ReportInput{Date: "2025-03-10", Tasks: core.StringPtr("a")})
	require.NoError(t, err)

	got, err := b.Store.Get(ctx, rep.ID)
	require.NoError(t, err)
	require.Equal(t, "a", got.Tasks)

	require.NoError(t, b.Close())
	require.NoError(t, (*Backend)(nil).Close())
}

func TestOpenExporterDisabled(t *testing.T) {
	_, err := OpenExporter(context.Background(), testConfig(t, "memory"))
	require.True(t, errors.Is(err, ErrSheetsDisabled))

	cfg := testConfig(t, "memory")
	cfg.GoogleSpreadsheetID = "sid"
	_, err = OpenExporter(context.Background(), cfg)
	require.Error(t, err, "credentials are required once a spreadsheet is named")
}
