package drift

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles drift HTTP requests
type Handler struct {
	service *Service
	backend string
	log     zerolog.Logger
}

// NewHandler creates a new drift handler
func NewHandler(service *Service, backend string, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		backend: backend,
		log:     log.With().Str("handler", "drift").Logger(),
	}
}

// HandleGetReport handles GET /report - run a drift scan
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	backend := r.URL.Query().Get("backend")
	if backend == "" {
		backend = h.backend
	}

	report, err := h.service.Scan(backend)
	if err != nil {
		h.log.Error().Err(err).Str("backend", backend).Msg("Drift scan failed")
		http.Error(w, "Failed to scan for drift", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// HandleGetSeries handles GET /series?name= - one raw history series
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Missing series name", http.StatusBadRequest)
		return
	}

	backend := r.URL.Query().Get("backend")
	if backend == "" {
		backend = h.backend
	}

	points, err := h.service.Series(backend, name)
	if err != nil {
		h.log.Error().Err(err).Str("series", name).Msg("Failed to load series")
		http.Error(w, "Failed to load series", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
