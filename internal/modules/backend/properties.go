package backend

import (
	"time"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

// BuildProperties assembles the backend-properties artifact from normalized
// calibration records. Record order is preserved: qubit entries appear in the
// order their rows arrived, each with its measurements in table order.
func BuildProperties(name, version string, now time.Time,
	qubits []calibration.QubitRecord, gates []calibration.GateRecord) *Properties {

	qubitEntries := make([][]domain.Measurement, 0, len(qubits))
	for _, rec := range qubits {
		entry := make([]domain.Measurement, len(rec.Measurements))
		copy(entry, rec.Measurements)
		qubitEntries = append(qubitEntries, entry)
	}

	gateEntries := make([]GateProperties, 0, len(gates))
	for _, rec := range gates {
		gateEntries = append(gateEntries, GateProperties{
			Qubits:     append([]int(nil), rec.Qubits...),
			Gate:       rec.Gate,
			Parameters: []domain.Measurement{rec.GateError, rec.GateLength},
			Name:       rec.Name,
		})
	}

	return &Properties{
		BackendName:    name,
		BackendVersion: version,
		LastUpdateDate: formatMinute(now),
		Qubits:         qubitEntries,
		Gates:          gateEntries,
		General:        []domain.Measurement{},
	}
}
