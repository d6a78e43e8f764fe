package noise

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/domain"
	"github.com/huayilab/calforge/internal/modules/calibration"
)

// Handler handles noise model HTTP requests
type Handler struct {
	service     *Service
	calibration *calibration.Service
	cfg         Config
	backend     string
	log         zerolog.Logger
}

// NewHandler creates a new noise model handler
func NewHandler(service *Service, cal *calibration.Service, cfg Config, backend string, log zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		calibration: cal,
		cfg:         cfg,
		backend:     backend,
		log:         log.With().Str("handler", "noise").Logger(),
	}
}

// HandleGetModel handles GET /model - noise model from the latest calibration run
func (h *Handler) HandleGetModel(w http.ResponseWriter, r *http.Request) {
	backend := r.URL.Query().Get("backend")
	if backend == "" {
		backend = h.backend
	}

	records, err := h.calibration.LatestRecords(backend)
	if err != nil {
		h.log.Warn().Err(err).Str("backend", backend).Msg("No calibration data")
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	model, err := h.service.BuildModel(h.cfg, records.QubitRecords, records.GateRecords)
	if err != nil {
		h.log.Error().Err(err).Msg("Noise model synthesis failed")
		http.Error(w, err.Error(), synthesisErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(model)
}

// synthesisErrorStatus maps domain synthesis errors to 422, the rest to 500.
func synthesisErrorStatus(err error) int {
	var arity *domain.UnsupportedGateArityError
	var missing *domain.MissingReadoutDataError
	var invalid *domain.InvalidProbabilityError
	if errors.As(err, &arity) || errors.As(err, &missing) || errors.As(err, &invalid) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
