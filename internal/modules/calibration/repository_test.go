package calibration

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huayilab/calforge/internal/database"
	"github.com/huayilab/calforge/internal/domain"
)

func newTestRepo(t *testing.T) (*database.DB, *Repository) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "calibration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	return db, NewRepository(db.Conn(), zerolog.Nop())
}

func saveRun(t *testing.T, db *database.DB, repo *Repository, run Run) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.SaveRun(tx, run))
	require.NoError(t, tx.Commit())
}

func saveRecords(t *testing.T, db *database.DB, repo *Repository, runID string, qubits []QubitRecord, gates []GateRecord) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err)
	for _, rec := range qubits {
		require.NoError(t, repo.SaveQubitRecord(tx, runID, rec))
	}
	for _, rec := range gates {
		require.NoError(t, repo.SaveGateRecord(tx, runID, rec))
	}
	require.NoError(t, tx.Commit())
}

func TestRepository_RunRoundTrip(t *testing.T) {
	db, repo := newTestRepo(t)

	run := Run{
		ID:         "run-1",
		Backend:    "huayi",
		Source:     "csv",
		ImportedAt: time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC),
		QubitRows:  2,
		GateRows:   1,
	}
	saveRun(t, db, repo, run)

	runs, err := repo.GetRuns()
	assert.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.True(t, run.ImportedAt.Equal(runs[0].ImportedAt))

	latest, err := repo.LatestRun("huayi")
	assert.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Equal(t, run.ID, latest.ID)
}

func TestRepository_LatestRunPicksNewest(t *testing.T) {
	db, repo := newTestRepo(t)

	base := time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)
	saveRun(t, db, repo, Run{ID: "old", Backend: "huayi", Source: "csv", ImportedAt: base})
	saveRun(t, db, repo, Run{ID: "new", Backend: "huayi", Source: "csv", ImportedAt: base.Add(time.Hour)})
	saveRun(t, db, repo, Run{ID: "other", Backend: "elsewhere", Source: "csv", ImportedAt: base.Add(2 * time.Hour)})

	latest, err := repo.LatestRun("huayi")
	assert.NoError(t, err)
	assert.Equal(t, "new", latest.ID)
}

func TestRepository_LatestRunNilWhenEmpty(t *testing.T) {
	_, repo := newTestRepo(t)

	latest, err := repo.LatestRun("huayi")
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRepository_QubitRecordRoundTrip(t *testing.T) {
	db, repo := newTestRepo(t)

	date := time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)
	saveRun(t, db, repo, Run{ID: "run-1", Backend: "huayi", Source: "csv", ImportedAt: date})

	records := []QubitRecord{
		{
			Qubit: 0,
			Measurements: []domain.Measurement{
				domain.NewMeasurement(date, domain.MeasT1, domain.UnitMilliseconds, 50),
				domain.NewMeasurement(date, domain.MeasReadoutError, domain.UnitNone, 0.05),
				domain.NewMeasurement(date, domain.MeasProbMeas0Prep1, domain.UnitNone, 0.02),
				domain.NewMeasurement(date, domain.MeasProbMeas1Prep0, domain.UnitNone, 0.01),
			},
			ReadoutSuperseded: true,
		},
		{
			Qubit: 1,
			Measurements: []domain.Measurement{
				domain.NewMeasurement(date, domain.MeasT2, domain.UnitMilliseconds, 30),
			},
		},
	}
	saveRecords(t, db, repo, "run-1", records, nil)

	loaded, err := repo.GetQubitRecords("run-1")
	assert.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, 0, loaded[0].Qubit)
	assert.True(t, loaded[0].ReadoutSuperseded)
	assert.Len(t, loaded[0].Measurements, 4)
	assert.Equal(t, domain.MeasT1, loaded[0].Measurements[0].Name)
	assert.Equal(t, 50.0, loaded[0].Measurements[0].Value)

	assert.Equal(t, 1, loaded[1].Qubit)
	assert.False(t, loaded[1].ReadoutSuperseded)
}

func TestRepository_GateRecordRoundTrip(t *testing.T) {
	db, repo := newTestRepo(t)

	date := time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)
	saveRun(t, db, repo, Run{ID: "run-1", Backend: "huayi", Source: "csv", ImportedAt: date})

	records := []GateRecord{
		{
			Gate:       "x",
			Name:       "x_0",
			Qubits:     []int{0},
			GateError:  domain.NewMeasurement(date, domain.MeasGateError, domain.UnitNone, 0.001),
			GateLength: domain.NewMeasurement(date, domain.MeasGateLength, domain.UnitMicroseconds, 0.035),
		},
		{
			Gate:       "cz",
			Name:       "cz0_1",
			Qubits:     []int{0, 1},
			GateError:  domain.NewMeasurement(date, domain.MeasGateError, domain.UnitNone, 0.012),
			GateLength: domain.NewMeasurement(date, domain.MeasGateLength, domain.UnitMicroseconds, 0.2),
		},
	}
	saveRecords(t, db, repo, "run-1", nil, records)

	loaded, err := repo.GetGateRecords("run-1")
	assert.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, "x", loaded[0].Gate)
	assert.Equal(t, []int{0}, loaded[0].Qubits)
	assert.Equal(t, 0.001, loaded[0].GateError.Value)
	assert.Equal(t, domain.MeasGateLength, loaded[0].GateLength.Name)

	assert.Equal(t, "cz0_1", loaded[1].Name)
	assert.Equal(t, []int{0, 1}, loaded[1].Qubits)
	assert.Equal(t, 0.2, loaded[1].GateLength.Value)
}
