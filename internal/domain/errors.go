package domain

import "fmt"

// MalformedInputError reports a calibration field whose value and timestamp
// do not arrive as a pair.
type MalformedInputError struct {
	Entity string // "qubit 3", "gate cz(0,1)"
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input for %s field %q: %s", e.Entity, e.Field, e.Reason)
}

// UnsupportedGateArityError reports a gate acting on a qubit tuple whose
// length is not 1 or 2.
type UnsupportedGateArityError struct {
	Gate   string
	Qubits []int
}

func (e *UnsupportedGateArityError) Error() string {
	return fmt.Sprintf("unsupported gate arity %d for gate %q on qubits %v (supported: 1, 2)",
		len(e.Qubits), e.Gate, e.Qubits)
}

// MissingReadoutDataError reports a qubit with no usable readout error source:
// neither the prob_meas0_prep1/prob_meas1_prep0 pair nor a scalar readout_error.
type MissingReadoutDataError struct {
	Qubit int
}

func (e *MissingReadoutDataError) Error() string {
	return fmt.Sprintf("qubit %d has no readout error data", e.Qubit)
}

// InvalidProbabilityError reports a measured or derived probability outside [0,1].
type InvalidProbabilityError struct {
	Entity string
	Label  string
	Value  float64
}

func (e *InvalidProbabilityError) Error() string {
	return fmt.Sprintf("invalid probability %g for %s (%s): must be in [0,1]", e.Value, e.Entity, e.Label)
}
