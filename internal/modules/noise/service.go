package noise

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/events"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

// Service builds complete noise models from calibration records
type Service struct {
	events *events.Manager
	log    zerolog.Logger
}

// NewService creates a noise model service
func NewService(ev *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		events: ev,
		log:    log.With().Str("service", "noise").Logger(),
	}
}

// BuildModel synthesizes every channel for one calibration run. Each record
// is independent, so synthesis fans out goroutine-per-record and the results
// are re-keyed afterwards; output is deterministic regardless of completion
// order. The first synthesis failure aborts the build.
func (s *Service) BuildModel(cfg Config, qubits []calibration.QubitRecord, gates []calibration.GateRecord) (*NoiseModel, error) {
	synth := NewSynthesizer(cfg)

	type readoutResult struct {
		channel *ReadoutErrorChannel
		err     error
	}
	type gateResult struct {
		channel *PauliMixtureChannel
		err     error
	}

	readoutCh := make(chan readoutResult, len(qubits))
	gateCh := make(chan gateResult, len(gates))

	for _, rec := range qubits {
		go func(rec calibration.QubitRecord) {
			channel, err := synth.SynthesizeReadout(rec)
			readoutCh <- readoutResult{channel: channel, err: err}
		}(rec)
	}
	for _, rec := range gates {
		go func(rec calibration.GateRecord) {
			channel, err := synth.SynthesizeGate(rec)
			gateCh <- gateResult{channel: channel, err: err}
		}(rec)
	}

	model := &NoiseModel{
		BasisGates:         append([]string(nil), cfg.BasisGates...),
		LocalReadoutErrors: make(map[string]*ReadoutErrorChannel, len(qubits)),
		LocalQuantumErrors: make(map[string]map[string]*PauliMixtureChannel),
	}

	var firstErr error
	for i := 0; i < len(qubits); i++ {
		res := <-readoutCh
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		model.LocalReadoutErrors[res.channel.Key()] = res.channel
	}
	for i := 0; i < len(gates); i++ {
		res := <-gateCh
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		byQubits, ok := model.LocalQuantumErrors[res.channel.Gate]
		if !ok {
			byQubits = make(map[string]*PauliMixtureChannel)
			model.LocalQuantumErrors[res.channel.Gate] = byQubits
		}
		byQubits[res.channel.Key()] = res.channel
	}
	if firstErr != nil {
		return nil, firstErr
	}

	model.NoiseQubits = noiseQubits(cfg, model)
	model.NoiseInstructions = noiseInstructions(model)

	s.log.Info().
		Int("readout_channels", len(model.LocalReadoutErrors)).
		Int("gates", len(model.LocalQuantumErrors)).
		Int("qubits", len(model.NoiseQubits)).
		Msg("Noise model built")

	s.events.Emit(events.NoiseModelBuilt, "noise", map[string]interface{}{
		"readout_channels": len(model.LocalReadoutErrors),
		"gates":            len(model.LocalQuantumErrors),
	})

	return model, nil
}

// noiseQubits returns the declared qubit universe: the configured one when
// set, otherwise the union of qubits touched by any channel.
func noiseQubits(cfg Config, model *NoiseModel) []int {
	if len(cfg.Qubits) > 0 {
		out := append([]int(nil), cfg.Qubits...)
		sort.Ints(out)
		return out
	}

	seen := map[int]bool{}
	for _, channel := range model.LocalReadoutErrors {
		for _, q := range channel.Qubits() {
			seen[q] = true
		}
	}
	for _, byQubits := range model.LocalQuantumErrors {
		for _, channel := range byQubits {
			for _, q := range channel.Qubits {
				seen[q] = true
			}
		}
	}

	out := make([]int, 0, len(seen))
	for q := range seen {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}

// noiseInstructions returns the declared instruction labels: every gate with
// a quantum error channel, plus "measure" when readout channels exist.
func noiseInstructions(model *NoiseModel) []string {
	labels := make([]string, 0, len(model.LocalQuantumErrors)+1)
	for gate := range model.LocalQuantumErrors {
		labels = append(labels, gate)
	}
	sort.Strings(labels)
	if len(model.LocalReadoutErrors) > 0 {
		labels = append(labels, "measure")
	}
	return labels
}
