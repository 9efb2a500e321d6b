package repositories

import (
	"context"
	"delivery-delay-service/internal/domain"
	"delivery-delay-service/internal/platform/db"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testParams(id string) *domain.ModelParams {
	return &domain.ModelParams{
		ID:           id,
		Algorithm:    "ridge",
		TrainedAt:    time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Features:     []string{"distance_km", "priority_level", "weather_severity", "historical_reliability", "carrier=A"},
		Carriers:     []string{"A"},
		Means:        []float64{120.5, 1, 0.75, 0.62, 0.5},
		Scales:       []float64{40.25, 0.8, 1.1, 0.1, 0.5},
		Coefficients: []float64{12.125, -1.5, 4.0625, -0.3, 2},
		Intercept:    33.3,
		Lambda:       1e-3,
		Evaluation:   domain.Evaluation{MAE: 4.2, R2: 0.81, TrainRows: 160, TestRows: 40},
	}
}

func TestFileModelStore(t *testing.T) {
	ctx := context.Background()
	store := NewFileModelStore(filepath.Join(t.TempDir(), "models", "model.json"))

	_, err := store.LoadParams(ctx)
	require.ErrorIs(t, err, domain.ErrModelNotFound)

	want := testParams("first")
	require.NoError(t, store.SaveParams(ctx, want))
	require.NoError(t, store.SaveParams(ctx, testParams("second")))

	got, err := store.LoadParams(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", got.ID)

	want.ID = "second"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestFileModelStoreRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"x","features":["a"],"means":[],"scales":[],"coefficients":[]}`), 0o644))

	_, err := NewFileModelStore(path).LoadParams(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrModelNotFound)
}

func TestSaveParamsRejectsInvalidParams(t *testing.T) {
	bad := testParams("bad")
	bad.Scales[0] = 0

	store := NewFileModelStore(filepath.Join(t.TempDir(), "model.json"))
	assert.Error(t, store.SaveParams(context.Background(), bad))
	assert.Error(t, store.SaveParams(context.Background(), nil))
}

func TestSqliteModelStore(t *testing.T) {
	ctx := context.Background()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(conn))
	// Idempotent.
	require.NoError(t, InitSchema(conn))

	store := NewSqliteModelStore(conn)
	_, err = store.LoadParams(ctx)
	require.ErrorIs(t, err, domain.ErrModelNotFound)

	require.NoError(t, store.SaveParams(ctx, testParams("first")))
	require.NoError(t, store.SaveParams(ctx, testParams("second")))

	got, err := store.LoadParams(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(testParams("second"), got); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestReadParamsFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, NewFileModelStore(path).SaveParams(ctx, testParams("exported")))

	got, err := ReadParamsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "exported", got.ID)

	_, err = ReadParamsFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNilDB(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, InitSchema(nil))
	_, err := NewSqliteModelStore(nil).LoadParams(ctx)
	assert.Error(t, err)
	assert.Error(t, NewSQLModelStore(nil).SaveParams(ctx, testParams("x")))
}
