package calibration

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/database"
	"github.com/huayilab/calforge/internal/events"
)

// ErrNoRuns means no calibration has been imported yet for a backend.
var ErrNoRuns = errors.New("no calibration runs")

// Recorder receives completed imports, e.g. to append them to long-lived
// history. Recording failures must not fail the import.
type Recorder interface {
	RecordRun(backend string, result *ImportResult) error
}

// Service orchestrates calibration ingestion: CSV tables in, normalized
// records out, everything persisted as one run.
type Service struct {
	db       *database.DB
	repo     *Repository
	builder  *Builder
	events   *events.Manager
	recorder Recorder
	log      zerolog.Logger
}

// NewService creates a calibration service
func NewService(db *database.DB, repo *Repository, ev *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		builder: NewBuilder(),
		events:  ev,
		log:     log.With().Str("service", "calibration").Logger(),
	}
}

// SetRecorder attaches an import recorder
func (s *Service) SetRecorder(r Recorder) {
	s.recorder = r
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	Run          Run           `json:"run"`
	QubitRecords []QubitRecord `json:"qubit_records"`
	GateRecords  []GateRecord  `json:"gate_records"`
}

// ImportCSV ingests one pair of calibration tables for a backend. The whole
// batch is transactional: any malformed row aborts the import.
func (s *Service) ImportCSV(backend, source string, qubitCSV, gateCSV io.Reader) (*ImportResult, error) {
	qubitRows, err := ReadQubitRows(qubitCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qubit table: %w", err)
	}
	gateRows, err := ReadGateRows(gateCSV)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gate table: %w", err)
	}

	qubitRecords := make([]QubitRecord, 0, len(qubitRows))
	for _, row := range qubitRows {
		rec, err := s.builder.BuildQubitRecord(row)
		if err != nil {
			return nil, err
		}
		qubitRecords = append(qubitRecords, rec)
	}

	gateRecords := make([]GateRecord, 0, len(gateRows))
	for _, row := range gateRows {
		rec, err := s.builder.BuildGateRecord(row)
		if err != nil {
			return nil, err
		}
		gateRecords = append(gateRecords, rec)
	}

	run := Run{
		ID:         uuid.New().String(),
		Backend:    backend,
		Source:     source,
		ImportedAt: time.Now().UTC(),
		QubitRows:  len(qubitRecords),
		GateRows:   len(gateRecords),
	}

	// Header and measurements commit atomically: a failed measurement insert
	// must not leave an empty run behind as the backend's newest.
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.repo.SaveRun(tx, run); err != nil {
		return nil, err
	}
	for _, rec := range qubitRecords {
		if err := s.repo.SaveQubitRecord(tx, run.ID, rec); err != nil {
			return nil, err
		}
	}
	for _, rec := range gateRecords {
		if err := s.repo.SaveGateRecord(tx, run.ID, rec); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit calibration import: %w", err)
	}

	s.log.Info().
		Str("run_id", run.ID).
		Str("backend", backend).
		Int("qubits", len(qubitRecords)).
		Int("gates", len(gateRecords)).
		Msg("Calibration imported")

	s.events.Emit(events.CalibrationImported, "calibration", map[string]interface{}{
		"run_id":  run.ID,
		"backend": backend,
		"qubits":  len(qubitRecords),
		"gates":   len(gateRecords),
	})

	result := &ImportResult{Run: run, QubitRecords: qubitRecords, GateRecords: gateRecords}

	if s.recorder != nil {
		if err := s.recorder.RecordRun(backend, result); err != nil {
			s.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to record run history")
		}
	}

	return result, nil
}

// Runs lists all calibration runs
func (s *Service) Runs() ([]Run, error) {
	return s.repo.GetRuns()
}

// LatestRecords returns the most recent run's records for a backend
func (s *Service) LatestRecords(backend string) (*ImportResult, error) {
	run, err := s.repo.LatestRun(backend)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("backend %q: %w", backend, ErrNoRuns)
	}
	return s.RecordsForRun(*run)
}

// RecordsForRun reconstructs a run's records from storage
func (s *Service) RecordsForRun(run Run) (*ImportResult, error) {
	qubits, err := s.repo.GetQubitRecords(run.ID)
	if err != nil {
		return nil, err
	}
	gates, err := s.repo.GetGateRecords(run.ID)
	if err != nil {
		return nil, err
	}
	return &ImportResult{Run: run, QubitRecords: qubits, GateRecords: gates}, nil
}
