package scheduler

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/modules/backend"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

// ArtifactBuildJob periodically rebuilds backend artifacts from the latest
// calibration run, so on-disk props/conf files never go stale.
type ArtifactBuildJob struct {
	service *backend.Service
	backend string
	log     zerolog.Logger
}

// NewArtifactBuildJob creates an artifact build job
func NewArtifactBuildJob(service *backend.Service, backendName string, log zerolog.Logger) *ArtifactBuildJob {
	return &ArtifactBuildJob{
		service: service,
		backend: backendName,
		log:     log.With().Str("job", "artifact_build").Logger(),
	}
}

// Name returns the job name
func (j *ArtifactBuildJob) Name() string {
	return "artifact_build"
}

// Run executes one artifact rebuild
func (j *ArtifactBuildJob) Run() error {
	result, err := j.service.Build(j.backend)
	if err != nil {
		// No calibration yet is routine on a fresh deployment; don't
		// surface it as a job failure.
		if errors.Is(err, calibration.ErrNoRuns) {
			j.log.Debug().Str("backend", j.backend).Msg("No calibration data yet, skipping build")
			return nil
		}
		return err
	}

	j.log.Info().
		Str("backend", j.backend).
		Int("artifacts", len(result.Artifacts)).
		Msg("Artifact rebuild complete")
	return nil
}
