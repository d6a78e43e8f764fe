package calibration

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/database/repositories"
	"github.com/huayilab/calforge/internal/domain"
)

const timeFormat = time.RFC3339

// Repository persists calibration runs and their measurements
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new calibration repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "calibration").Logger()),
	}
}

// SaveRun inserts a calibration run header. It shares the transaction with
// the run's measurements so a failed import leaves no header behind.
func (r *Repository) SaveRun(tx *sql.Tx, run Run) error {
	_, err := tx.Exec(`
		INSERT INTO calibration_runs (id, backend, source, imported_at, qubit_rows, gate_rows)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Backend, run.Source, run.ImportedAt.Format(timeFormat), run.QubitRows, run.GateRows)
	if err != nil {
		return fmt.Errorf("failed to insert calibration run: %w", err)
	}
	return nil
}

// SaveQubitRecord persists one qubit record's measurements in order
func (r *Repository) SaveQubitRecord(tx *sql.Tx, runID string, rec QubitRecord) error {
	for _, m := range rec.Measurements {
		superseded := 0
		if rec.ReadoutSuperseded && m.Name == domain.MeasReadoutError {
			superseded = 1
		}
		_, err := tx.Exec(`
			INSERT INTO qubit_measurements (run_id, qubit, name, unit, value, measured_at, superseded)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.Qubit, m.Name, m.Unit, m.Value, m.Date.Format(timeFormat), superseded)
		if err != nil {
			return fmt.Errorf("failed to insert qubit measurement: %w", err)
		}
	}
	return nil
}

// SaveGateRecord persists one gate record's measurements
func (r *Repository) SaveGateRecord(tx *sql.Tx, runID string, rec GateRecord) error {
	for _, m := range []domain.Measurement{rec.GateError, rec.GateLength} {
		_, err := tx.Exec(`
			INSERT INTO gate_measurements (run_id, gate, label, qubits, name, unit, value, measured_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rec.Gate, rec.Name, domain.QubitKey(rec.Qubits), m.Name, m.Unit, m.Value, m.Date.Format(timeFormat))
		if err != nil {
			return fmt.Errorf("failed to insert gate measurement: %w", err)
		}
	}
	return nil
}

// GetRuns returns all calibration runs, newest first
func (r *Repository) GetRuns() ([]Run, error) {
	rows, err := r.DB().Query(`
		SELECT id, backend, source, imported_at, qubit_rows, gate_rows
		FROM calibration_runs
		ORDER BY imported_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query calibration runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating calibration runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the newest run for a backend, or nil if none exists
func (r *Repository) LatestRun(backend string) (*Run, error) {
	rows, err := r.DB().Query(`
		SELECT id, backend, source, imported_at, qubit_rows, gate_rows
		FROM calibration_runs
		WHERE backend = ?
		ORDER BY imported_at DESC
		LIMIT 1`, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest run: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil // No runs yet
	}
	run, err := scanRun(rows)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetQubitRecords reconstructs the qubit records of a run in insertion order
func (r *Repository) GetQubitRecords(runID string) ([]QubitRecord, error) {
	rows, err := r.DB().Query(`
		SELECT qubit, name, unit, value, measured_at, superseded
		FROM qubit_measurements
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query qubit measurements: %w", err)
	}
	defer rows.Close()

	var records []QubitRecord
	index := map[int]int{} // qubit -> position in records
	for rows.Next() {
		var (
			qubit, superseded int
			name, unit, date  string
			value             float64
		)
		if err := rows.Scan(&qubit, &name, &unit, &value, &date, &superseded); err != nil {
			return nil, fmt.Errorf("failed to scan qubit measurement: %w", err)
		}
		measuredAt, err := time.Parse(timeFormat, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse measurement time: %w", err)
		}

		pos, ok := index[qubit]
		if !ok {
			pos = len(records)
			index[qubit] = pos
			records = append(records, QubitRecord{Qubit: qubit})
		}
		records[pos].Measurements = append(records[pos].Measurements,
			domain.NewMeasurement(measuredAt, name, unit, value))
		if superseded == 1 {
			records[pos].ReadoutSuperseded = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qubit measurements: %w", err)
	}
	return records, nil
}

// GetGateRecords reconstructs the gate records of a run in insertion order
func (r *Repository) GetGateRecords(runID string) ([]GateRecord, error) {
	rows, err := r.DB().Query(`
		SELECT gate, label, qubits, name, unit, value, measured_at
		FROM gate_measurements
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gate measurements: %w", err)
	}
	defer rows.Close()

	var records []GateRecord
	index := map[string]int{} // label+qubits -> position in records
	for rows.Next() {
		var (
			gate, label, qubits, name, unit, date string
			value                                 float64
		)
		if err := rows.Scan(&gate, &label, &qubits, &name, &unit, &value, &date); err != nil {
			return nil, fmt.Errorf("failed to scan gate measurement: %w", err)
		}
		measuredAt, err := time.Parse(timeFormat, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse measurement time: %w", err)
		}
		indices, err := domain.ParseQubitKey(qubits)
		if err != nil {
			return nil, fmt.Errorf("failed to parse qubit key %q: %w", qubits, err)
		}

		key := label + "|" + qubits
		pos, ok := index[key]
		if !ok {
			pos = len(records)
			index[key] = pos
			records = append(records, GateRecord{Gate: gate, Name: label, Qubits: indices})
		}

		m := domain.NewMeasurement(measuredAt, name, unit, value)
		switch name {
		case domain.MeasGateError:
			records[pos].GateError = m
		case domain.MeasGateLength:
			records[pos].GateLength = m
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gate measurements: %w", err)
	}
	return records, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run  Run
		date string
	)
	if err := rows.Scan(&run.ID, &run.Backend, &run.Source, &date, &run.QubitRows, &run.GateRows); err != nil {
		return Run{}, fmt.Errorf("failed to scan calibration run: %w", err)
	}
	importedAt, err := time.Parse(timeFormat, date)
	if err != nil {
		return Run{}, fmt.Errorf("failed to parse run time: %w", err)
	}
	run.ImportedAt = importedAt
	return run, nil
}
