package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// handleSystemStatus handles GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var runCount, artifactCount int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM calibration_runs`).Scan(&runCount); err != nil {
		s.log.Error().Err(err).Msg("Failed to count calibration runs")
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM artifacts`).Scan(&artifactCount); err != nil {
		s.log.Error().Err(err).Msg("Failed to count artifacts")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"backend":          s.cfg.BackendName,
		"version":          s.cfg.BackendVersion,
		"uptime_seconds":   int(time.Since(s.startedAt).Seconds()),
		"calibration_runs": runCount,
		"artifacts":        artifactCount,
		"dev_mode":         s.cfg.DevMode,
	})
}
