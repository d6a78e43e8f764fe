package calibration

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp layouts for *_date columns, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReadQubitRows parses the per-qubit calibration table. Expected columns:
// optional "qubit" (defaults to the row position), then value/_date pairs for
// T1, T2, frequency, readout_error, prob_meas0_prep1, prob_meas1_prep0 and
// readout_length. Empty cells mean the field was not measured.
func ReadQubitRows(r io.Reader) ([]RawQubitRow, error) {
	header, records, err := readTable(r)
	if err != nil {
		return nil, err
	}

	rows := make([]RawQubitRow, 0, len(records))
	for i, rec := range records {
		cell := cellReader(header, rec)

		row := RawQubitRow{Qubit: i}
		if q, ok := cell("qubit"); ok && q != "" {
			idx, err := strconv.Atoi(q)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid qubit index %q: %w", i+1, q, err)
			}
			row.Qubit = idx
		}

		fields := []struct {
			column string
			dest   *RawField
		}{
			{"T1", &row.T1},
			{"T2", &row.T2},
			{"frequency", &row.Frequency},
			{"readout_error", &row.ReadoutError},
			{"prob_meas0_prep1", &row.ProbMeas0Prep1},
			{"prob_meas1_prep0", &row.ProbMeas1Prep0},
			{"readout_length", &row.ReadoutLength},
		}
		for _, f := range fields {
			field, err := parseField(cell, f.column)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			*f.dest = field
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// ReadGateRows parses the per-gate calibration table. Expected columns:
// "qubits" (a JSON array of indices), "gate", "name", "gate_error"/"error_date"
// and "gate_length"/"length_date".
func ReadGateRows(r io.Reader) ([]RawGateRow, error) {
	header, records, err := readTable(r)
	if err != nil {
		return nil, err
	}

	rows := make([]RawGateRow, 0, len(records))
	for i, rec := range records {
		cell := cellReader(header, rec)

		qubitsRaw, ok := cell("qubits")
		if !ok {
			return nil, fmt.Errorf("row %d: missing qubits column", i+1)
		}
		var qubits []int
		if err := json.Unmarshal([]byte(qubitsRaw), &qubits); err != nil {
			return nil, fmt.Errorf("row %d: invalid qubits %q: %w", i+1, qubitsRaw, err)
		}

		gate, _ := cell("gate")
		name, _ := cell("name")

		gateError, err := parseFieldAt(cell, "gate_error", "error_date")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		gateLength, err := parseFieldAt(cell, "gate_length", "length_date")
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		rows = append(rows, RawGateRow{
			Gate:       gate,
			Name:       name,
			Qubits:     qubits,
			GateError:  gateError,
			GateLength: gateLength,
		})
	}
	return rows, nil
}

func readTable(r io.Reader) (map[string]int, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty CSV: missing header row")
	}

	header := make(map[string]int, len(all[0]))
	for i, col := range all[0] {
		header[strings.TrimSpace(col)] = i
	}
	return header, all[1:], nil
}

func cellReader(header map[string]int, record []string) func(string) (string, bool) {
	return func(column string) (string, bool) {
		idx, ok := header[column]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}
}

// parseField reads the conventional pair "<column>" / "<column>_date".
func parseField(cell func(string) (string, bool), column string) (RawField, error) {
	return parseFieldAt(cell, column, column+"_date")
}

func parseFieldAt(cell func(string) (string, bool), valueCol, dateCol string) (RawField, error) {
	var field RawField

	if raw, ok := cell(valueCol); ok && raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return RawField{}, fmt.Errorf("invalid %s value %q: %w", valueCol, raw, err)
		}
		field.Value = &v
	}

	if raw, ok := cell(dateCol); ok && raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return RawField{}, fmt.Errorf("invalid %s value %q: %w", dateCol, raw, err)
		}
		field.Date = &d
	}

	return field, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format %q", raw)
}
