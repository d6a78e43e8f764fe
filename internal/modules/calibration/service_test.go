package calibration

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huayilab/calforge/internal/database"
	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/events"
)

const (
	sampleQubitCSV = `qubit,T1,T1_date,T2,T2_date,frequency,frequency_date,prob_meas0_prep1,prob_meas0_prep1_date,prob_meas1_prep0,prob_meas1_prep0_date
0,50,2023-11-20T10:00Z,30,2023-11-20T10:00Z,5000,2023-11-20T10:00Z,0.02,2023-11-20T10:00Z,0.01,2023-11-20T10:00Z
1,48,2023-11-20T10:05Z,29,2023-11-20T10:05Z,4980,2023-11-20T10:05Z,,,,`

	sampleGateCSV = `qubits,gate,name,gate_error,error_date,gate_length,length_date
"[0]",x,x_0,0.001,2023-11-20T10:00Z,0.035,2023-11-20T10:00Z
"[0, 1]",cz,cz0_1,0.012,2023-11-20T10:00Z,0.2,2023-11-20T10:00Z`
)

type recordingRecorder struct {
	backend string
	result  *ImportResult
	err     error
}

func (r *recordingRecorder) RecordRun(backend string, result *ImportResult) error {
	r.backend = backend
	r.result = result
	return r.err
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "calibration.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate())

	repo := NewRepository(db.Conn(), zerolog.Nop())
	return NewService(db, repo, events.NewManager(zerolog.Nop()), zerolog.Nop())
}

func TestImportCSV(t *testing.T) {
	s := newTestService(t)

	result, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(sampleGateCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, result.Run.ID)
	assert.Equal(t, "huayi", result.Run.Backend)
	assert.Equal(t, 2, result.Run.QubitRows)
	assert.Equal(t, 2, result.Run.GateRows)

	require.Len(t, result.QubitRecords, 2)
	assert.Equal(t, 0, result.QubitRecords[0].Qubit)
	t1, ok := result.QubitRecords[0].Measurement(domain.MeasT1)
	assert.True(t, ok)
	assert.Equal(t, 50.0, t1.Value)

	require.Len(t, result.GateRecords, 2)
	assert.Equal(t, "x", result.GateRecords[0].Gate)
	assert.Equal(t, []int{0, 1}, result.GateRecords[1].Qubits)
}

func TestImportCSV_PersistsRecords(t *testing.T) {
	s := newTestService(t)

	imported, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(sampleGateCSV))
	require.NoError(t, err)

	latest, err := s.LatestRecords("huayi")
	require.NoError(t, err)
	assert.Equal(t, imported.Run.ID, latest.Run.ID)
	assert.Len(t, latest.QubitRecords, 2)
	assert.Len(t, latest.GateRecords, 2)

	runs, err := s.Runs()
	assert.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestImportCSV_MalformedRowAbortsImport(t *testing.T) {
	s := newTestService(t)

	// Second qubit row has a value without its timestamp
	badQubits := `qubit,T1,T1_date
0,50,2023-11-20T10:00Z
1,48,`

	_, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(badQubits), strings.NewReader(sampleGateCSV))

	var malformed *domain.MalformedInputError
	assert.True(t, errors.As(err, &malformed))

	// Nothing was persisted
	_, err = s.LatestRecords("huayi")
	assert.True(t, errors.Is(err, ErrNoRuns))
}

func TestImportCSV_MeasurementFailureLeavesNoRun(t *testing.T) {
	s := newTestService(t)

	// Force every measurement insert to fail after parsing succeeds
	_, err := s.db.Exec(`DROP TABLE qubit_measurements`)
	require.NoError(t, err)

	_, err = s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(sampleGateCSV))
	assert.Error(t, err)

	// The run header must roll back with the measurements; otherwise the
	// orphaned empty run becomes the backend's newest and downstream builds
	// produce empty artifacts.
	_, err = s.LatestRecords("huayi")
	assert.True(t, errors.Is(err, ErrNoRuns))

	runs, err := s.Runs()
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestImportCSV_BadArityAbortsImport(t *testing.T) {
	s := newTestService(t)

	badGates := `qubits,gate,name,gate_error,error_date,gate_length,length_date
"[0, 1, 2]",ccx,ccx_0,0.01,2023-11-20T10:00Z,0.5,2023-11-20T10:00Z`

	_, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(badGates))

	var arity *domain.UnsupportedGateArityError
	assert.True(t, errors.As(err, &arity))
	assert.Equal(t, "ccx", arity.Gate)
}

func TestImportCSV_NotifiesRecorder(t *testing.T) {
	s := newTestService(t)
	rec := &recordingRecorder{}
	s.SetRecorder(rec)

	result, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(sampleGateCSV))
	require.NoError(t, err)

	assert.Equal(t, "huayi", rec.backend)
	assert.Equal(t, result.Run.ID, rec.result.Run.ID)
}

func TestImportCSV_RecorderFailureDoesNotFailImport(t *testing.T) {
	s := newTestService(t)
	s.SetRecorder(&recordingRecorder{err: errors.New("history unavailable")})

	_, err := s.ImportCSV("huayi", "csv",
		strings.NewReader(sampleQubitCSV), strings.NewReader(sampleGateCSV))
	assert.NoError(t, err)
}

func TestLatestRecords_NoRuns(t *testing.T) {
	s := newTestService(t)

	_, err := s.LatestRecords("huayi")
	assert.True(t, errors.Is(err, ErrNoRuns))
}
