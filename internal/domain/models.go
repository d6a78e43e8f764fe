package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Measurement names as they appear in calibration data and generated artifacts.
const (
	MeasT1             = "T1"
	MeasT2             = "T2"
	MeasFrequency      = "frequency"
	MeasReadoutError   = "readout_error"
	MeasProbMeas0Prep1 = "prob_meas0_prep1"
	MeasProbMeas1Prep0 = "prob_meas1_prep0"
	MeasReadoutLength  = "readout_length"
	MeasGateError      = "gate_error"
	MeasGateLength     = "gate_length"
)

// Units for the measurement names above. Error and probability fields are unitless.
const (
	UnitMilliseconds = "ms"
	UnitMegahertz    = "MHz"
	UnitMicroseconds = "us"
	UnitNone         = ""
)

// Measurement is a single calibrated scalar: a value with its unit and the
// moment it was measured. Immutable once recorded.
type Measurement struct {
	Date  time.Time `json:"date"`
	Name  string    `json:"name"`
	Unit  string    `json:"unit"`
	Value float64   `json:"value"`
}

// NewMeasurement creates a measurement record
func NewMeasurement(date time.Time, name, unit string, value float64) Measurement {
	return Measurement{Date: date, Name: name, Unit: unit, Value: value}
}

// MarshalJSON serializes the measurement in the artifact wire shape
// {date, name, unit, value} with a minute-precision ISO-8601 date.
func (m Measurement) MarshalJSON() ([]byte, error) {
	type wire struct {
		Date  string  `json:"date"`
		Name  string  `json:"name"`
		Unit  string  `json:"unit"`
		Value float64 `json:"value"`
	}
	return json.Marshal(wire{
		Date:  m.Date.Format("2006-01-02T15:04Z07:00"),
		Name:  m.Name,
		Unit:  m.Unit,
		Value: m.Value,
	})
}

// UnmarshalJSON accepts both minute-precision and full RFC3339 dates.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	type wire struct {
		Date  string  `json:"date"`
		Name  string  `json:"name"`
		Unit  string  `json:"unit"`
		Value float64 `json:"value"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02T15:04Z07:00", w.Date)
	if err != nil {
		date, err = time.Parse(time.RFC3339, w.Date)
		if err != nil {
			return err
		}
	}
	*m = Measurement{Date: date, Name: w.Name, Unit: w.Unit, Value: w.Value}
	return nil
}

// QubitKey renders a qubit index tuple as a canonical map key, e.g. "0" or "0,1".
func QubitKey(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = strconv.Itoa(q)
	}
	return strings.Join(parts, ",")
}

// ParseQubitKey is the inverse of QubitKey.
func ParseQubitKey(key string) ([]int, error) {
	if key == "" {
		return nil, nil
	}
	parts := strings.Split(key, ",")
	qubits := make([]int, len(parts))
	for i, p := range parts {
		q, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		qubits[i] = q
	}
	return qubits, nil
}
