package calibration

import (
	"fmt"
	"time"

	"github.com/huayilab/calforge/internal/domain"
)

// RawField is one optional column pair from a calibration table: a measured
// value and the timestamp it was measured at. Both must be present or both
// absent; anything else is malformed input.
type RawField struct {
	Value *float64
	Date  *time.Time
}

// Present reports whether the field carries a complete value/timestamp pair.
func (f RawField) Present() bool {
	return f.Value != nil && f.Date != nil
}

// RawQubitRow is one row of the per-qubit calibration table.
type RawQubitRow struct {
	Qubit          int
	T1             RawField
	T2             RawField
	Frequency      RawField
	ReadoutError   RawField
	ProbMeas0Prep1 RawField
	ProbMeas1Prep0 RawField
	ReadoutLength  RawField
}

// RawGateRow is one row of the per-gate calibration table.
type RawGateRow struct {
	Gate       string
	Name       string
	Qubits     []int
	GateError  RawField
	GateLength RawField
}

// QubitRecord is one qubit's normalized calibration record: its index plus
// the ordered measurements taken for it. Immutable once built.
type QubitRecord struct {
	Qubit        int                  `json:"qubit"`
	Measurements []domain.Measurement `json:"measurements"`

	// ReadoutSuperseded marks that a plain readout_error measurement was
	// supplied alongside the prob_meas0_prep1/prob_meas1_prep0 pair. The
	// pair takes precedence; the scalar is kept for the record only.
	ReadoutSuperseded bool `json:"readout_superseded,omitempty"`
}

// Measurement returns the named measurement, if present.
func (r QubitRecord) Measurement(name string) (domain.Measurement, bool) {
	for _, m := range r.Measurements {
		if m.Name == name {
			return m, true
		}
	}
	return domain.Measurement{}, false
}

// GateRecord is one gate's normalized calibration record.
type GateRecord struct {
	Gate       string             `json:"gate"`
	Name       string             `json:"name"` // instance label, e.g. "cz0_1"
	Qubits     []int              `json:"qubits"`
	GateError  domain.Measurement `json:"gate_error"`
	GateLength domain.Measurement `json:"gate_length"`
}

// Entity renders the gate identity for error reporting, e.g. `gate "cz" (0,1)`.
func (r GateRecord) Entity() string {
	return gateEntity(r.Gate, r.Qubits)
}

func gateEntity(gate string, qubits []int) string {
	return fmt.Sprintf("gate %q (%s)", gate, domain.QubitKey(qubits))
}

func qubitEntity(qubit int) string {
	return fmt.Sprintf("qubit %d", qubit)
}

// Run records one calibration import batch.
type Run struct {
	ID         string    `json:"id"`
	Backend    string    `json:"backend"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`
	QubitRows  int       `json:"qubit_rows"`
	GateRows   int       `json:"gate_rows"`
}
