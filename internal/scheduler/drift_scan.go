package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/modules/drift"
)

// DriftScanJob periodically scans calibration history for drifting parameters
type DriftScanJob struct {
	service *drift.Service
	backend string
	log     zerolog.Logger
}

// NewDriftScanJob creates a drift scan job
func NewDriftScanJob(service *drift.Service, backend string, log zerolog.Logger) *DriftScanJob {
	return &DriftScanJob{
		service: service,
		backend: backend,
		log:     log.With().Str("job", "drift_scan").Logger(),
	}
}

// Name returns the job name
func (j *DriftScanJob) Name() string {
	return "drift_scan"
}

// Run executes one drift scan
func (j *DriftScanJob) Run() error {
	report, err := j.service.Scan(j.backend)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("backend", j.backend).
		Int("series", len(report.Series)).
		Int("drifting", len(report.DriftingSeries)).
		Msg("Drift scan complete")
	return nil
}
