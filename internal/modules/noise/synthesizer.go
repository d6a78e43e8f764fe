package noise

import (
	"gonum.org/v1/gonum/mat"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

// Config carries per-model synthesis settings. Passing it explicitly (rather
// than module-level defaults) lets several backend models be built
// concurrently without interference.
type Config struct {
	BasisGates []string
	Qubits     []int // qubit universe covered by the model
}

// Synthesizer converts normalized calibration records into probabilistic
// error channels. All methods are pure: identical input produces bit-identical
// output.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer creates a channel synthesizer
func NewSynthesizer(cfg Config) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// SynthesizeReadout derives a qubit's readout confusion matrix.
//
// Source precedence: if both prob_meas0_prep1 and prob_meas1_prep0 were
// measured, they become the off-diagonal entries directly and any scalar
// readout_error is ignored entirely. With only the scalar available, it is
// split evenly across both off-diagonals (r/2) — a policy choice, since no
// asymmetry information exists, and the channel is marked Symmetric.
func (s *Synthesizer) SynthesizeReadout(rec calibration.QubitRecord) (*ReadoutErrorChannel, error) {
	p01Meas, hasP01 := rec.Measurement(domain.MeasProbMeas0Prep1)
	p10Meas, hasP10 := rec.Measurement(domain.MeasProbMeas1Prep0)

	if hasP01 && hasP10 {
		return s.readoutFromPair(rec.Qubit, p01Meas.Value, p10Meas.Value)
	}

	scalar, hasScalar := rec.Measurement(domain.MeasReadoutError)
	if !hasScalar {
		return nil, &domain.MissingReadoutDataError{Qubit: rec.Qubit}
	}

	r := scalar.Value
	if err := checkProbability(qubitEntity(rec.Qubit), domain.MeasReadoutError, r); err != nil {
		return nil, err
	}

	channel, err := s.readoutFromPair(rec.Qubit, r/2, r/2)
	if err != nil {
		return nil, err
	}
	channel.Symmetric = true
	return channel, nil
}

func (s *Synthesizer) readoutFromPair(qubit int, p01, p10 float64) (*ReadoutErrorChannel, error) {
	if err := checkProbability(qubitEntity(qubit), domain.MeasProbMeas0Prep1, p01); err != nil {
		return nil, err
	}
	if err := checkProbability(qubitEntity(qubit), domain.MeasProbMeas1Prep0, p10); err != nil {
		return nil, err
	}

	confusion := mat.NewDense(2, 2, []float64{
		1 - p01, p10,
		p01, 1 - p10,
	})

	return &ReadoutErrorChannel{
		qubits:    []int{qubit},
		confusion: confusion,
	}, nil
}

// SynthesizeGate derives a gate's Pauli-mixture channel from its measured
// error rate. The basis is the full Pauli basis of the gate's dimension; the
// identity label carries 1-e and the error mass e is distributed by the
// projector convention the rate was measured against:
//
//   - 1-qubit: e is the mass outside the (I+Z)/2 projector, i.e. combined
//     X/Y-type error. X and Y each get e/2; Z gets exactly 0. This two-way
//     split (not a uniform three-way one) is the documented convention and
//     must not be "fixed" into a symmetric scheme.
//   - 2-qubit: e is the mass outside the (II+IZ+ZI+ZZ)/4 stabilizer
//     subspace. The 12 labels outside it each get e/12; IZ, ZI and ZZ get
//     exactly 0. A 12-way split, not 15-way.
func (s *Synthesizer) SynthesizeGate(rec calibration.GateRecord) (*PauliMixtureChannel, error) {
	e := rec.GateError.Value
	entity := rec.Entity()

	if err := checkProbability(entity, domain.MeasGateError, e); err != nil {
		return nil, err
	}

	var terms []PauliTerm
	switch len(rec.Qubits) {
	case 1:
		terms = oneQubitMixture(e)
	case 2:
		terms = twoQubitMixture(e)
	default:
		return nil, &domain.UnsupportedGateArityError{Gate: rec.Gate, Qubits: rec.Qubits}
	}

	// Derived probabilities stay in [0,1] whenever e does, but the guard is
	// kept so a policy change upstream cannot silently produce a negative
	// mixture.
	for _, t := range terms {
		if t.Probability < 0 || t.Probability > 1 {
			return nil, &domain.InvalidProbabilityError{Entity: entity, Label: t.Label, Value: t.Probability}
		}
	}

	qubits := make([]int, len(rec.Qubits))
	copy(qubits, rec.Qubits)

	return &PauliMixtureChannel{
		Gate:   rec.Gate,
		Qubits: qubits,
		Terms:  terms,
	}, nil
}

func oneQubitMixture(e float64) []PauliTerm {
	probs := map[string]float64{
		"I": 1 - e,
		"X": e / 2,
		"Y": e / 2,
		"Z": 0,
	}
	terms := make([]PauliTerm, 0, len(oneQubitPaulis))
	for _, label := range oneQubitPaulis {
		terms = append(terms, PauliTerm{Label: label, Probability: probs[label]})
	}
	return terms
}

func twoQubitMixture(e float64) []PauliTerm {
	terms := make([]PauliTerm, 0, len(twoQubitPaulis))
	for _, label := range twoQubitPaulis {
		var p float64
		switch {
		case label == "II":
			p = 1 - e
		case twoQubitStabilizers[label]:
			p = 0
		default:
			p = e / 12
		}
		terms = append(terms, PauliTerm{Label: label, Probability: p})
	}
	return terms
}

func checkProbability(entity, label string, p float64) error {
	if p < 0 || p > 1 {
		return &domain.InvalidProbabilityError{Entity: entity, Label: label, Value: p}
	}
	return nil
}

func qubitEntity(qubit int) string {
	return "qubit " + domain.QubitKey([]int{qubit})
}
