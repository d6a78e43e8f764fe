package calibration

import (
	"github.com/huayilab/calforge/internal/domain"
)

// Builder turns raw calibration rows into normalized records. It is a pure
// transformation: no I/O, no state, deterministic output.
type Builder struct{}

// NewBuilder creates a record builder
func NewBuilder() *Builder {
	return &Builder{}
}

// qubitFields fixes the order measurements appear in a QubitRecord. The order
// matches the upstream calibration tables and is preserved for determinism.
var qubitFields = []struct {
	name string
	unit string
	get  func(RawQubitRow) RawField
}{
	{domain.MeasT1, domain.UnitMilliseconds, func(r RawQubitRow) RawField { return r.T1 }},
	{domain.MeasT2, domain.UnitMilliseconds, func(r RawQubitRow) RawField { return r.T2 }},
	{domain.MeasFrequency, domain.UnitMegahertz, func(r RawQubitRow) RawField { return r.Frequency }},
	{domain.MeasReadoutError, domain.UnitNone, func(r RawQubitRow) RawField { return r.ReadoutError }},
	{domain.MeasProbMeas0Prep1, domain.UnitNone, func(r RawQubitRow) RawField { return r.ProbMeas0Prep1 }},
	{domain.MeasProbMeas1Prep0, domain.UnitNone, func(r RawQubitRow) RawField { return r.ProbMeas1Prep0 }},
	{domain.MeasReadoutLength, domain.UnitMicroseconds, func(r RawQubitRow) RawField { return r.ReadoutLength }},
}

// BuildQubitRecord normalizes one per-qubit calibration row. Every supplied
// value must come with its measurement timestamp; a value without a timestamp
// (or the reverse) fails as malformed input. Fields that are wholly absent are
// simply omitted from the record.
func (b *Builder) BuildQubitRecord(row RawQubitRow) (QubitRecord, error) {
	rec := QubitRecord{Qubit: row.Qubit}

	for _, f := range qubitFields {
		field := f.get(row)
		if err := checkPaired(qubitEntity(row.Qubit), f.name, field); err != nil {
			return QubitRecord{}, err
		}
		if !field.Present() {
			continue
		}
		rec.Measurements = append(rec.Measurements,
			domain.NewMeasurement(*field.Date, f.name, f.unit, *field.Value))
	}

	// When the asymmetric readout pair is measured, it supersedes the plain
	// readout_error scalar. The scalar stays in the record; channel synthesis
	// must ignore it.
	if row.ProbMeas0Prep1.Present() && row.ProbMeas1Prep0.Present() && row.ReadoutError.Present() {
		rec.ReadoutSuperseded = true
	}

	return rec, nil
}

// BuildGateRecord normalizes one per-gate calibration row. Gates act on one
// or two qubits; any other arity is unsupported. gate_error and gate_length
// are required measurements.
func (b *Builder) BuildGateRecord(row RawGateRow) (GateRecord, error) {
	entity := gateEntity(row.Gate, row.Qubits)

	if n := len(row.Qubits); n != 1 && n != 2 {
		return GateRecord{}, &domain.UnsupportedGateArityError{Gate: row.Gate, Qubits: row.Qubits}
	}

	if err := checkPaired(entity, domain.MeasGateError, row.GateError); err != nil {
		return GateRecord{}, err
	}
	if err := checkPaired(entity, domain.MeasGateLength, row.GateLength); err != nil {
		return GateRecord{}, err
	}
	if !row.GateError.Present() {
		return GateRecord{}, &domain.MalformedInputError{
			Entity: entity, Field: domain.MeasGateError, Reason: "measurement is required",
		}
	}
	if !row.GateLength.Present() {
		return GateRecord{}, &domain.MalformedInputError{
			Entity: entity, Field: domain.MeasGateLength, Reason: "measurement is required",
		}
	}

	qubits := make([]int, len(row.Qubits))
	copy(qubits, row.Qubits)

	return GateRecord{
		Gate:       row.Gate,
		Name:       row.Name,
		Qubits:     qubits,
		GateError:  domain.NewMeasurement(*row.GateError.Date, domain.MeasGateError, domain.UnitNone, *row.GateError.Value),
		GateLength: domain.NewMeasurement(*row.GateLength.Date, domain.MeasGateLength, domain.UnitMicroseconds, *row.GateLength.Value),
	}, nil
}

// checkPaired rejects half-supplied fields: a value needs its timestamp and a
// timestamp needs its value.
func checkPaired(entity, field string, f RawField) error {
	switch {
	case f.Value != nil && f.Date == nil:
		return &domain.MalformedInputError{Entity: entity, Field: field, Reason: "value supplied without measurement timestamp"}
	case f.Value == nil && f.Date != nil:
		return &domain.MalformedInputError{Entity: entity, Field: field, Reason: "measurement timestamp supplied without value"}
	}
	return nil
}
