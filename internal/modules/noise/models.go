package noise

import (
	"encoding/json"

	"gonum.org/v1/gonum/mat"

	"github.com/huayilab/calforge/internal/domain"
)

// Pauli bases in canonical order. Channel synthesis emits every label of the
// basis, including the zero-probability ones, so consumers always see the
// full mixture.
var (
	oneQubitPaulis = []string{"I", "X", "Y", "Z"}

	// twoQubitPaulis is the 16-element tensor basis II, IX, ..., ZZ.
	twoQubitPaulis = buildTwoQubitPaulis()

	// twoQubitStabilizers are the labels inside the (II+IZ+ZI+ZZ)/4 projector
	// that defines the measured two-qubit error rate. They carry no error
	// probability under the documented convention.
	twoQubitStabilizers = map[string]bool{"IZ": true, "ZI": true, "ZZ": true}
)

func buildTwoQubitPaulis() []string {
	single := []string{"I", "X", "Y", "Z"}
	labels := make([]string, 0, 16)
	for _, a := range single {
		for _, b := range single {
			labels = append(labels, a+b)
		}
	}
	return labels
}

// ReadoutErrorChannel is a 2x2 confusion matrix for a single qubit's readout.
// Entry (i, j) is the probability of measuring bit i. Off-diagonal entries
// come straight from the prob_meas0_prep1/prob_meas1_prep0 pair (or the
// symmetric r/2 split); diagonals are their complements.
type ReadoutErrorChannel struct {
	qubits    []int
	confusion *mat.Dense

	// Symmetric marks a channel derived from the scalar readout_error with
	// the r/2 split. That split is a policy choice made in the absence of
	// asymmetry data, not a measured fact.
	Symmetric bool
}

// Qubits returns the qubit tuple the channel is keyed by.
func (c *ReadoutErrorChannel) Qubits() []int {
	out := make([]int, len(c.qubits))
	copy(out, c.qubits)
	return out
}

// Key returns the canonical map key for the channel's qubit tuple.
func (c *ReadoutErrorChannel) Key() string {
	return domain.QubitKey(c.qubits)
}

// At returns the confusion matrix entry at (i, j).
func (c *ReadoutErrorChannel) At(i, j int) float64 {
	return c.confusion.At(i, j)
}

// Matrix returns a copy of the confusion matrix.
func (c *ReadoutErrorChannel) Matrix() *mat.Dense {
	return mat.DenseCopyOf(c.confusion)
}

// MarshalJSON serializes the channel with its matrix as nested rows.
func (c *ReadoutErrorChannel) MarshalJSON() ([]byte, error) {
	rows, cols := c.confusion.Dims()
	matrix := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		matrix[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			matrix[i][j] = c.confusion.At(i, j)
		}
	}
	return json.Marshal(struct {
		Qubits    []int       `json:"qubits"`
		Matrix    [][]float64 `json:"matrix"`
		Symmetric bool        `json:"symmetric,omitempty"`
	}{Qubits: c.Qubits(), Matrix: matrix, Symmetric: c.Symmetric})
}

// PauliTerm is one (Pauli label, probability) entry of a mixture channel.
type PauliTerm struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// PauliMixtureChannel expresses a gate's error as a probabilistic mixture of
// Pauli operators over the full basis of the gate's dimension. Terms are
// ordered by the canonical basis order and sum to 1.
type PauliMixtureChannel struct {
	Gate   string      `json:"gate"`
	Qubits []int       `json:"qubits"`
	Terms  []PauliTerm `json:"terms"`
}

// Key returns the canonical map key for the channel's qubit tuple.
func (c *PauliMixtureChannel) Key() string {
	return domain.QubitKey(c.Qubits)
}

// Probability returns the probability assigned to a Pauli label, or 0 for a
// label outside the basis.
func (c *PauliMixtureChannel) Probability(label string) float64 {
	for _, t := range c.Terms {
		if t.Label == label {
			return t.Probability
		}
	}
	return 0
}

// NoiseModel aggregates every synthesized channel for one backend, keyed the
// way simulation consumers expect: readout channels by qubit tuple, quantum
// channels by gate name then qubit tuple.
type NoiseModel struct {
	BasisGates         []string                                   `json:"basis_gates"`
	NoiseInstructions  []string                                   `json:"noise_instructions"`
	NoiseQubits        []int                                      `json:"noise_qubits"`
	LocalReadoutErrors map[string]*ReadoutErrorChannel            `json:"local_readout_errors"`
	LocalQuantumErrors map[string]map[string]*PauliMixtureChannel `json:"local_quantum_errors"`
}
