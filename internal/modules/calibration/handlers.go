package calibration

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/domain"
)

// Handler handles calibration HTTP requests
type Handler struct {
	service *Service
	backend string
	log     zerolog.Logger
}

// NewHandler creates a new calibration handler
func NewHandler(service *Service, backend string, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		backend: backend,
		log:     log.With().Str("handler", "calibration").Logger(),
	}
}

// HandleImport handles POST /import - multipart form with "qubits" and
// "gates" CSV files.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(16 << 20); err != nil {
		http.Error(w, "Expected multipart form with qubits and gates files", http.StatusBadRequest)
		return
	}

	qubitFile, qubitHeader, err := r.FormFile("qubits")
	if err != nil {
		http.Error(w, "Missing qubits CSV file", http.StatusBadRequest)
		return
	}
	defer qubitFile.Close()

	gateFile, _, err := r.FormFile("gates")
	if err != nil {
		http.Error(w, "Missing gates CSV file", http.StatusBadRequest)
		return
	}
	defer gateFile.Close()

	backend := r.URL.Query().Get("backend")
	if backend == "" {
		backend = h.backend
	}

	result, err := h.service.ImportCSV(backend, qubitHeader.Filename, qubitFile, gateFile)
	if err != nil {
		h.log.Error().Err(err).Msg("Calibration import failed")
		http.Error(w, err.Error(), importErrorStatus(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetRuns handles GET /runs - list calibration runs
func (h *Handler) HandleGetRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.service.Runs()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list calibration runs")
		http.Error(w, "Failed to retrieve calibration runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// HandleGetRecords handles GET /runs/{id} - one run's records
func (h *Handler) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	runs, err := h.service.Runs()
	if err != nil {
		http.Error(w, "Failed to retrieve calibration runs", http.StatusInternalServerError)
		return
	}

	for _, run := range runs {
		if run.ID == runID {
			result, err := h.service.RecordsForRun(run)
			if err != nil {
				h.log.Error().Err(err).Str("run_id", runID).Msg("Failed to load records")
				http.Error(w, "Failed to load records", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(result)
			return
		}
	}

	http.Error(w, "Run not found", http.StatusNotFound)
}

// importErrorStatus maps record-build failures to 422 and everything else to 400.
func importErrorStatus(err error) int {
	var malformed *domain.MalformedInputError
	var arity *domain.UnsupportedGateArityError
	if errors.As(err, &malformed) || errors.As(err, &arity) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}
