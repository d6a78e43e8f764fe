package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasisGates(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		want    []string
		wantErr bool
	}{
		{name: "default set", set: "", want: []string{"id", "rx", "ry", "rz", "cz", "xy", "reset"}},
		{name: "rxrxcz", set: "rxrxcz", want: []string{"id", "rx", "ry", "cz", "reset"}},
		{name: "rrzrzz", set: "rrzrzz", want: []string{"id", "r", "rz", "rzz", "reset"}},
		{name: "unknown set", set: "bogus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BasisGates(tt.set)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFullyConnectedMap(t *testing.T) {
	assert.Equal(t, [][]int{
		{0, 1}, {0, 2},
		{1, 0}, {1, 2},
		{2, 0}, {2, 1},
	}, FullyConnectedMap(3))

	assert.Empty(t, FullyConnectedMap(1))
	assert.Empty(t, FullyConnectedMap(0))
}

func TestFiniteConnectedMap(t *testing.T) {
	assert.Equal(t, [][]int{
		{0, 1},
		{1, 0}, {1, 2},
		{2, 1}, {2, 3},
		{3, 2},
	}, FiniteConnectedMap(4, 1))
}

func TestFiniteConnectedMap_LargeRadiusIsFullyConnected(t *testing.T) {
	assert.Equal(t, FullyConnectedMap(3), FiniteConnectedMap(3, 4))
}

func TestBuildConfiguration(t *testing.T) {
	now := time.Date(2023, 11, 20, 10, 30, 0, 0, time.FixedZone("CST", 8*3600))

	conf, err := BuildConfiguration(ConfigurationParams{
		BackendName:    "huayi",
		BackendVersion: "1.2.0",
		NQubits:        3,
		BasisSet:       "",
		CouplingRadius: 0,
		MaxShots:       6000,
		Now:            now,
	})
	assert.NoError(t, err)

	assert.Equal(t, "huayi", conf.BackendName)
	assert.Equal(t, 3, conf.NQubits)
	assert.Equal(t, []string{"id", "rx", "ry", "rz", "cz", "xy", "reset"}, conf.BasisGates)
	assert.Equal(t, FullyConnectedMap(3), conf.CouplingMap)
	assert.Equal(t, 6000, conf.MaxShots)
	assert.True(t, conf.Local)
	assert.True(t, conf.Simulator)
	assert.True(t, conf.Memory)
	assert.False(t, conf.Conditional)
	assert.False(t, conf.OpenPulse)
	assert.Equal(t, "2023-11-20T10:30+08:00", conf.OnlineDate)

	// Identity gate is declared on every qubit
	assert.Len(t, conf.Gates, 1)
	assert.Equal(t, "id", conf.Gates[0].Name)
	assert.Equal(t, [][]int{{0}, {1}, {2}}, conf.Gates[0].CouplingMap)
	assert.Equal(t, "gate id q { id q; }", conf.Gates[0].QasmDef)
}

func TestBuildConfiguration_RadiusSelectsFiniteMap(t *testing.T) {
	conf, err := BuildConfiguration(ConfigurationParams{
		BackendName:    "huayi",
		BackendVersion: "1.2.0",
		NQubits:        4,
		CouplingRadius: 1,
		MaxShots:       6000,
		Now:            time.Now(),
	})
	assert.NoError(t, err)
	assert.Equal(t, FiniteConnectedMap(4, 1), conf.CouplingMap)
}

func TestBuildConfiguration_UnknownBasisSet(t *testing.T) {
	_, err := BuildConfiguration(ConfigurationParams{BasisSet: "bogus"})
	assert.Error(t, err)
}
