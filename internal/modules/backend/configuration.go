package backend

import (
	"fmt"
	"time"
)

// defaultBasisGates is the full native gate set of the target hardware.
var defaultBasisGates = []string{"id", "rx", "ry", "rz", "cz", "xy", "reset"}

// BasisGates resolves a named basis-gate set. The empty name selects the
// full default set.
func BasisGates(setName string) ([]string, error) {
	switch setName {
	case "":
		return append([]string(nil), defaultBasisGates...), nil
	case "rxrxcz":
		return []string{"id", "rx", "ry", "cz", "reset"}, nil
	case "rrzrzz":
		return []string{"id", "r", "rz", "rzz", "reset"}, nil
	default:
		return nil, fmt.Errorf("unknown basis gate set %q", setName)
	}
}

// FullyConnectedMap couples every ordered pair of distinct qubits.
func FullyConnectedMap(nQubits int) [][]int {
	couplingMap := make([][]int, 0, nQubits*(nQubits-1))
	for i := 0; i < nQubits; i++ {
		for j := 0; j < nQubits; j++ {
			if i == j {
				continue
			}
			couplingMap = append(couplingMap, []int{i, j})
		}
	}
	return couplingMap
}

// FiniteConnectedMap couples each qubit to neighbours within the given
// radius. A radius of at least nQubits degenerates to full connectivity.
func FiniteConnectedMap(nQubits, radius int) [][]int {
	if radius > nQubits {
		return FullyConnectedMap(nQubits)
	}
	var couplingMap [][]int
	for i := 0; i < nQubits; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi > nQubits-1 {
			hi = nQubits - 1
		}
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			couplingMap = append(couplingMap, []int{i, j})
		}
	}
	return couplingMap
}

// ConfigurationParams carries the knobs for configuration assembly.
type ConfigurationParams struct {
	BackendName    string
	BackendVersion string
	NQubits        int
	BasisSet       string // named set, "" for default
	CouplingRadius int    // 0 = fully connected
	MaxShots       int
	Now            time.Time
}

// BuildConfiguration assembles the static backend configuration.
func BuildConfiguration(p ConfigurationParams) (*Configuration, error) {
	basisGates, err := BasisGates(p.BasisSet)
	if err != nil {
		return nil, err
	}

	var couplingMap [][]int
	if p.CouplingRadius > 0 {
		couplingMap = FiniteConnectedMap(p.NQubits, p.CouplingRadius)
	} else {
		couplingMap = FullyConnectedMap(p.NQubits)
	}

	// Single-qubit identity on every qubit; declared so consumers always
	// have at least one fully specified gate definition.
	idCoupling := make([][]int, p.NQubits)
	for i := range idCoupling {
		idCoupling[i] = []int{i}
	}

	return &Configuration{
		BackendName:    p.BackendName,
		BackendVersion: p.BackendVersion,
		NQubits:        p.NQubits,
		BasisGates:     basisGates,
		Gates: []GateConfig{
			{
				Name:        "id",
				Parameters:  []string{},
				QasmDef:     "gate id q { id q; }",
				CouplingMap: idCoupling,
			},
		},
		Local:       true,
		Simulator:   true,
		Conditional: false,
		OpenPulse:   false,
		Memory:      true,
		MaxShots:    p.MaxShots,
		CouplingMap: couplingMap,
		OnlineDate:  formatMinute(p.Now),
	}, nil
}

// formatMinute renders an ISO-8601 timestamp at minute precision, matching
// the artifact date convention.
func formatMinute(t time.Time) string {
	return t.Format("2006-01-02T15:04Z07:00")
}
