package backend

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/config"
	"github.com/huayilab/calforge/internal/events"
	"github.com/huayilab/calforge/internal/modules/calibration"
	"github.com/huayilab/calforge/internal/modules/noise"
)

// Service assembles and persists complete backend models: properties,
// configuration and the noise model snapshot, all derived from the latest
// calibration run.
type Service struct {
	cfg         *config.Config
	calibration *calibration.Service
	noise       *noise.Service
	writer      *Writer
	repo        *Repository
	events      *events.Manager
	log         zerolog.Logger
}

// NewService creates a backend build service
func NewService(
	cfg *config.Config,
	cal *calibration.Service,
	noiseService *noise.Service,
	writer *Writer,
	repo *Repository,
	ev *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		calibration: cal,
		noise:       noiseService,
		writer:      writer,
		repo:        repo,
		events:      ev,
		log:         log.With().Str("service", "backend").Logger(),
	}
}

// now returns the artifact timestamp in the configured zone.
func (s *Service) now() time.Time {
	zone := time.FixedZone("", s.cfg.TZOffsetHours*3600)
	return time.Now().In(zone)
}

// NoiseConfig returns the synthesis configuration derived from application
// config and the qubit count of the current calibration.
func (s *Service) NoiseConfig(nQubits int) (noise.Config, error) {
	basisGates, err := BasisGates(s.cfg.BasisSet)
	if err != nil {
		return noise.Config{}, err
	}
	qubits := make([]int, nQubits)
	for i := range qubits {
		qubits[i] = i
	}
	return noise.Config{BasisGates: basisGates, Qubits: qubits}, nil
}

// Build runs a full backend build from the latest calibration run: assembles
// properties and configuration, synthesizes the noise model, and writes all
// three artifacts.
func (s *Service) Build(backendName string) (*BuildResult, error) {
	if backendName == "" {
		backendName = s.cfg.BackendName
	}

	records, err := s.calibration.LatestRecords(backendName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	props := BuildProperties(backendName, s.cfg.BackendVersion, now,
		records.QubitRecords, records.GateRecords)

	conf, err := BuildConfiguration(ConfigurationParams{
		BackendName:    backendName,
		BackendVersion: s.cfg.BackendVersion,
		NQubits:        len(records.QubitRecords),
		BasisSet:       s.cfg.BasisSet,
		CouplingRadius: s.cfg.CouplingRadius,
		MaxShots:       s.cfg.MaxShots,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	noiseCfg, err := s.NoiseConfig(len(records.QubitRecords))
	if err != nil {
		return nil, err
	}
	model, err := s.noise.BuildModel(noiseCfg, records.QubitRecords, records.GateRecords)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Properties: props, Configuration: conf}

	propsPath, err := s.writer.WriteProperties(props)
	if err != nil {
		return nil, err
	}
	confPath, err := s.writer.WriteConfiguration(conf)
	if err != nil {
		return nil, err
	}
	snapPath, err := s.writer.WriteSnapshot(&Snapshot{
		Backend:   backendName,
		Version:   s.cfg.BackendVersion,
		RunID:     records.Run.ID,
		CreatedAt: now,
		Model:     model,
	})
	if err != nil {
		return nil, err
	}

	written := []Artifact{
		{RunID: records.Run.ID, Backend: backendName, Kind: "properties", Path: propsPath, CreatedAt: now},
		{RunID: records.Run.ID, Backend: backendName, Kind: "configuration", Path: confPath, CreatedAt: now},
		{RunID: records.Run.ID, Backend: backendName, Kind: "snapshot", Path: snapPath, CreatedAt: now},
	}
	for _, a := range written {
		if err := s.repo.SaveArtifact(a); err != nil {
			return nil, err
		}
	}
	result.Artifacts = written

	s.log.Info().
		Str("backend", backendName).
		Str("run_id", records.Run.ID).
		Int("qubits", len(records.QubitRecords)).
		Int("gates", len(records.GateRecords)).
		Msg("Backend build complete")

	s.events.Emit(events.ArtifactsWritten, "backend", map[string]interface{}{
		"backend": backendName,
		"run_id":  records.Run.ID,
		"count":   len(written),
	})

	return result, nil
}

// Properties assembles the properties artifact without writing it
func (s *Service) Properties(backendName string) (*Properties, error) {
	if backendName == "" {
		backendName = s.cfg.BackendName
	}
	records, err := s.calibration.LatestRecords(backendName)
	if err != nil {
		return nil, err
	}
	return BuildProperties(backendName, s.cfg.BackendVersion, s.now(),
		records.QubitRecords, records.GateRecords), nil
}

// Configuration assembles the configuration artifact without writing it
func (s *Service) Configuration(backendName string) (*Configuration, error) {
	if backendName == "" {
		backendName = s.cfg.BackendName
	}
	records, err := s.calibration.LatestRecords(backendName)
	if err != nil {
		return nil, err
	}
	return BuildConfiguration(ConfigurationParams{
		BackendName:    backendName,
		BackendVersion: s.cfg.BackendVersion,
		NQubits:        len(records.QubitRecords),
		BasisSet:       s.cfg.BasisSet,
		CouplingRadius: s.cfg.CouplingRadius,
		MaxShots:       s.cfg.MaxShots,
		Now:            s.now(),
	})
}

// Artifacts lists written artifacts for a backend
func (s *Service) Artifacts(backendName string) ([]Artifact, error) {
	if backendName == "" {
		backendName = s.cfg.BackendName
	}
	return s.repo.GetArtifacts(backendName)
}
