package backend

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/events"
	"github.com/huayilab/calforge/internal/modules/calibration"
	"github.com/huayilab/calforge/internal/modules/noise"
)

func testNoiseModel(t *testing.T) *noise.NoiseModel {
	t.Helper()

	date := time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)
	qubits := []calibration.QubitRecord{
		{
			Qubit: 0,
			Measurements: []domain.Measurement{
				domain.NewMeasurement(date, domain.MeasProbMeas0Prep1, domain.UnitNone, 0.02),
				domain.NewMeasurement(date, domain.MeasProbMeas1Prep0, domain.UnitNone, 0.01),
			},
		},
	}
	gates := []calibration.GateRecord{
		{
			Gate:       "x",
			Name:       "x_0",
			Qubits:     []int{0},
			GateError:  domain.NewMeasurement(date, domain.MeasGateError, domain.UnitNone, 0.001),
			GateLength: domain.NewMeasurement(date, domain.MeasGateLength, domain.UnitMicroseconds, 0.035),
		},
	}

	model, err := noise.NewService(events.NewManager(zerolog.Nop()), zerolog.Nop()).BuildModel(noise.Config{}, qubits, gates)
	require.NoError(t, err)
	return model
}

func TestWriter_JSONArtifacts(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, zerolog.Nop())

	props := BuildProperties("huayi", "1.2.0", time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC), nil, nil)
	propsPath, err := w.WriteProperties(props)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "props_huayi.json"), propsPath)

	conf, err := BuildConfiguration(ConfigurationParams{
		BackendName: "huayi",
		NQubits:     2,
		MaxShots:    6000,
		Now:         time.Now(),
	})
	require.NoError(t, err)
	confPath, err := w.WriteConfiguration(conf)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "conf_huayi.json"), confPath)

	// Both files decode back as JSON
	for _, path := range []string{propsPath, confPath} {
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		var decoded map[string]interface{}
		assert.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, "huayi", decoded["backend_name"])
	}
}

func TestWriter_SnapshotRoundTrip(t *testing.T) {
	w := NewWriter(t.TempDir(), zerolog.Nop())

	snap := &Snapshot{
		Backend:   "huayi",
		Version:   "1.2.0",
		RunID:     "run-1",
		CreatedAt: time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC),
		Model:     testNoiseModel(t),
	}

	path, err := w.WriteSnapshot(snap)
	assert.NoError(t, err)
	assert.Equal(t, "snapshot_huayi.msgpack", filepath.Base(path))

	loaded, err := w.ReadSnapshot("huayi")
	assert.NoError(t, err)
	assert.Equal(t, snap.Backend, loaded.Backend)
	assert.Equal(t, snap.RunID, loaded.RunID)
	assert.True(t, snap.CreatedAt.Equal(loaded.CreatedAt))

	// The readout channel survives the binary round trip intact
	channel := loaded.Model.LocalReadoutErrors["0"]
	require.NotNil(t, channel)
	assert.Equal(t, []int{0}, channel.Qubits())
	assert.Equal(t, 1-0.02, channel.At(0, 0))
	assert.Equal(t, 0.01, channel.At(0, 1))
	assert.Equal(t, 0.02, channel.At(1, 0))
	assert.Equal(t, 1-0.01, channel.At(1, 1))

	mixture := loaded.Model.LocalQuantumErrors["x"]["0"]
	require.NotNil(t, mixture)
	assert.Equal(t, 1-0.001, mixture.Probability("I"))
}

func TestWriter_ReadSnapshotMissing(t *testing.T) {
	w := NewWriter(t.TempDir(), zerolog.Nop())

	_, err := w.ReadSnapshot("huayi")
	assert.Error(t, err)
}
