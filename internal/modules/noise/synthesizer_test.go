package noise

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

var testDate = time.Date(2023, 11, 20, 10, 0, 0, 0, time.UTC)

func qubitRecord(qubit int, measurements map[string]float64) calibration.QubitRecord {
	rec := calibration.QubitRecord{Qubit: qubit}
	// Fixed order so records are reproducible across test runs
	for _, name := range []string{
		domain.MeasT1, domain.MeasT2, domain.MeasFrequency,
		domain.MeasReadoutError, domain.MeasProbMeas0Prep1,
		domain.MeasProbMeas1Prep0, domain.MeasReadoutLength,
	} {
		if v, ok := measurements[name]; ok {
			rec.Measurements = append(rec.Measurements,
				domain.NewMeasurement(testDate, name, "", v))
		}
	}
	return rec
}

func gateRecord(gate string, qubits []int, gateError float64) calibration.GateRecord {
	return calibration.GateRecord{
		Gate:       gate,
		Name:       gate,
		Qubits:     qubits,
		GateError:  domain.NewMeasurement(testDate, domain.MeasGateError, "", gateError),
		GateLength: domain.NewMeasurement(testDate, domain.MeasGateLength, "us", 0.1),
	}
}

func TestSynthesizeReadout_PairTakesPrecedence(t *testing.T) {
	synth := NewSynthesizer(Config{})

	// readout_error is deliberately inconsistent with the pair; it must be
	// ignored entirely.
	rec := qubitRecord(0, map[string]float64{
		domain.MeasReadoutError:   0.5,
		domain.MeasProbMeas0Prep1: 0.02,
		domain.MeasProbMeas1Prep0: 0.01,
	})

	channel, err := synth.SynthesizeReadout(rec)
	assert.NoError(t, err)
	assert.False(t, channel.Symmetric)

	// [[1-p01, p10], [p01, 1-p10]], bit-identical to the inputs
	assert.Equal(t, 1-0.02, channel.At(0, 0))
	assert.Equal(t, 0.01, channel.At(0, 1))
	assert.Equal(t, 0.02, channel.At(1, 0))
	assert.Equal(t, 1-0.01, channel.At(1, 1))
}

func TestSynthesizeReadout_ScalarSplitsSymmetrically(t *testing.T) {
	synth := NewSynthesizer(Config{})

	rec := qubitRecord(3, map[string]float64{
		domain.MeasReadoutError: 0.04,
	})

	channel, err := synth.SynthesizeReadout(rec)
	assert.NoError(t, err)
	assert.True(t, channel.Symmetric)

	assert.Equal(t, 0.04/2, channel.At(0, 1))
	assert.Equal(t, 0.04/2, channel.At(1, 0))
	assert.Equal(t, 1-0.04/2, channel.At(0, 0))
	assert.Equal(t, 1-0.04/2, channel.At(1, 1))
	assert.Equal(t, "3", channel.Key())
}

func TestSynthesizeReadout_PartialPairFallsBackToScalar(t *testing.T) {
	synth := NewSynthesizer(Config{})

	// Only one half of the pair present: the pair rule does not apply and
	// the scalar is used.
	rec := qubitRecord(1, map[string]float64{
		domain.MeasProbMeas0Prep1: 0.02,
		domain.MeasReadoutError:   0.1,
	})

	channel, err := synth.SynthesizeReadout(rec)
	assert.NoError(t, err)
	assert.True(t, channel.Symmetric)
	assert.InDelta(t, 0.05, channel.At(1, 0), 1e-15)
}

func TestSynthesizeReadout_MissingData(t *testing.T) {
	synth := NewSynthesizer(Config{})

	rec := qubitRecord(7, map[string]float64{
		domain.MeasT1: 50,
		domain.MeasT2: 30,
	})

	_, err := synth.SynthesizeReadout(rec)

	var missing *domain.MissingReadoutDataError
	assert.True(t, errors.As(err, &missing))
	assert.Equal(t, 7, missing.Qubit)
}

func TestSynthesizeReadout_InvalidProbability(t *testing.T) {
	synth := NewSynthesizer(Config{})

	tests := []struct {
		name         string
		measurements map[string]float64
	}{
		{
			name:         "scalar above one",
			measurements: map[string]float64{domain.MeasReadoutError: 1.5},
		},
		{
			name: "negative pair entry",
			measurements: map[string]float64{
				domain.MeasProbMeas0Prep1: -0.1,
				domain.MeasProbMeas1Prep0: 0.01,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := synth.SynthesizeReadout(qubitRecord(0, tt.measurements))

			var invalid *domain.InvalidProbabilityError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestSynthesizeGate_OneQubit(t *testing.T) {
	synth := NewSynthesizer(Config{})

	channel, err := synth.SynthesizeGate(gateRecord("x", []int{0}, 0.001))
	assert.NoError(t, err)

	// I: 1-e, X: e/2, Y: e/2, Z: 0 — the two-way split convention
	assert.Equal(t, []PauliTerm{
		{Label: "I", Probability: 1 - 0.001},
		{Label: "X", Probability: 0.001 / 2},
		{Label: "Y", Probability: 0.001 / 2},
		{Label: "Z", Probability: 0.0},
	}, channel.Terms)

	sum := 0.0
	for _, term := range channel.Terms {
		sum += term.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSynthesizeGate_TwoQubit(t *testing.T) {
	synth := NewSynthesizer(Config{})

	channel, err := synth.SynthesizeGate(gateRecord("cx", []int{0, 1}, 0.012))
	assert.NoError(t, err)
	assert.Len(t, channel.Terms, 16)

	assert.Equal(t, 1-0.012, channel.Probability("II"))

	// The stabilizer labels sit inside the projector the error rate was
	// measured against and carry no probability.
	for _, label := range []string{"IZ", "ZI", "ZZ"} {
		assert.Equal(t, 0.0, channel.Probability(label), label)
	}

	// The remaining 12 labels split the error mass evenly.
	nonStabilizer := 0
	sum := 0.0
	for _, term := range channel.Terms {
		sum += term.Probability
		if term.Label != "II" && term.Probability > 0 {
			assert.Equal(t, 0.012/12, term.Probability, term.Label)
			nonStabilizer++
		}
	}
	assert.Equal(t, 12, nonStabilizer)
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestSynthesizeGate_BasisOrder(t *testing.T) {
	synth := NewSynthesizer(Config{})

	channel, err := synth.SynthesizeGate(gateRecord("cz", []int{1, 2}, 0.0))
	assert.NoError(t, err)

	labels := make([]string, len(channel.Terms))
	for i, term := range channel.Terms {
		labels[i] = term.Label
	}
	assert.Equal(t, []string{
		"II", "IX", "IY", "IZ",
		"XI", "XX", "XY", "XZ",
		"YI", "YX", "YY", "YZ",
		"ZI", "ZX", "ZY", "ZZ",
	}, labels)
}

func TestSynthesizeGate_UnsupportedArity(t *testing.T) {
	synth := NewSynthesizer(Config{})

	tests := []struct {
		name   string
		qubits []int
	}{
		{name: "zero qubits", qubits: []int{}},
		{name: "three qubits", qubits: []int{0, 1, 2}},
		{name: "five qubits", qubits: []int{0, 1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := synth.SynthesizeGate(gateRecord("ccx", tt.qubits, 0.01))

			var arity *domain.UnsupportedGateArityError
			assert.True(t, errors.As(err, &arity))
			assert.Equal(t, tt.qubits, arity.Qubits)
		})
	}
}

func TestSynthesizeGate_InvalidErrorRate(t *testing.T) {
	synth := NewSynthesizer(Config{})

	for _, e := range []float64{-0.1, 1.1, 2.0} {
		_, err := synth.SynthesizeGate(gateRecord("x", []int{0}, e))

		var invalid *domain.InvalidProbabilityError
		assert.True(t, errors.As(err, &invalid), "gate_error=%g", e)
	}
}

func TestSynthesis_Deterministic(t *testing.T) {
	synth := NewSynthesizer(Config{})

	qubit := qubitRecord(0, map[string]float64{
		domain.MeasProbMeas0Prep1: 0.02,
		domain.MeasProbMeas1Prep0: 0.01,
	})
	gate := gateRecord("cz", []int{0, 1}, 0.012)

	r1, err := synth.SynthesizeReadout(qubit)
	assert.NoError(t, err)
	r2, err := synth.SynthesizeReadout(qubit)
	assert.NoError(t, err)
	assert.Equal(t, r1.Matrix().RawMatrix().Data, r2.Matrix().RawMatrix().Data)

	g1, err := synth.SynthesizeGate(gate)
	assert.NoError(t, err)
	g2, err := synth.SynthesizeGate(gate)
	assert.NoError(t, err)
	assert.Equal(t, g1.Terms, g2.Terms)
}
