package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailpack-labs/healthcsv/internal/testutil"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRunLifecycle(t *testing.T) {
	store := openTestStore(t)

	run, err := store.CreateRun("routes", "workout-routes/*.gpx", "gpx_data.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	run.UnitsOK = 3
	run.UnitsSkipped = 1
	run.RecordsOK = 1200
	run.RecordsSkipped = 2
	run.Columns = 9
	require.NoError(t, store.CompleteRun(run, RunStatusCompleted, ""))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "routes", got.Command)
	assert.Equal(t, RunStatusCompleted, got.Status)
	assert.Equal(t, 3, got.UnitsOK)
	assert.Equal(t, 1, got.UnitsSkipped)
	assert.Equal(t, 1200, got.RecordsOK)
	assert.Equal(t, 9, got.Columns)
	assert.Empty(t, got.Error)
	assert.NotNil(t, got.CompletedAt)
}

func TestSQLiteStoreFailedRun(t *testing.T) {
	store := openTestStore(t)

	run, err := store.CreateRun("records", "HKQuantityTypeIdentifierHeartRate", "HeartRate.csv")
	require.NoError(t, err)
	require.NoError(t, store.CompleteRun(run, RunStatusFailed, "empty corpus: no records produced by any unit"))

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "empty corpus")
}

func TestSQLiteStoreListLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.CreateRun("routes", "*.gpx", "out.csv")
		require.NoError(t, err)
	}

	runs, err := store.ListRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLiteStoreNotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	_, err := store.CreateRun("routes", "*.gpx", "out.csv")
	assert.Error(t, err)
	_, err = store.ListRuns(1)
	assert.Error(t, err)
}
