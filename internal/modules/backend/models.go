package backend

import (
	"time"

	"github.com/huayilab/calforge/internal/domain"
)

// GateProperties is one gate's entry in the properties artifact.
type GateProperties struct {
	Qubits     []int                `json:"qubits"`
	Gate       string               `json:"gate"`
	Parameters []domain.Measurement `json:"parameters"`
	Name       string               `json:"name"`
}

// Properties is the backend-properties artifact: every qubit and gate with
// its timestamped measured values.
type Properties struct {
	BackendName    string                 `json:"backend_name"`
	BackendVersion string                 `json:"backend_version"`
	LastUpdateDate string                 `json:"last_update_date"`
	Qubits         [][]domain.Measurement `json:"qubits"`
	Gates          []GateProperties       `json:"gates"`
	General        []domain.Measurement   `json:"general"`
}

// GateConfig declares one gate in the configuration artifact.
type GateConfig struct {
	Name        string   `json:"name"`
	Parameters  []string `json:"parameters"`
	QasmDef     string   `json:"qasm_def"`
	CouplingMap [][]int  `json:"coupling_map"`
}

// Configuration is the backend-configuration artifact: the static description
// of the device a simulation consumer needs alongside the properties.
type Configuration struct {
	BackendName    string       `json:"backend_name"`
	BackendVersion string       `json:"backend_version"`
	NQubits        int          `json:"n_qubits"`
	BasisGates     []string     `json:"basis_gates"`
	Gates          []GateConfig `json:"gates"`
	Local          bool         `json:"local"`
	Simulator      bool         `json:"simulator"`
	Conditional    bool         `json:"conditional"`
	OpenPulse      bool         `json:"open_pulse"`
	Memory         bool         `json:"memory"`
	MaxShots       int          `json:"max_shots"`
	CouplingMap    [][]int      `json:"coupling_map"`
	OnlineDate     string       `json:"online_date"`
}

// Artifact records one file written for a backend build.
type Artifact struct {
	RunID     string    `json:"run_id"`
	Backend   string    `json:"backend"`
	Kind      string    `json:"kind"` // "properties", "configuration", "snapshot"
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildResult is returned by a full backend build.
type BuildResult struct {
	Properties    *Properties    `json:"properties"`
	Configuration *Configuration `json:"configuration"`
	Artifacts     []Artifact     `json:"artifacts"`
}
