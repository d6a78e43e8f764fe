package backend

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles backend build HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new backend handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "backend").Logger(),
	}
}

// HandleBuild handles POST /build - run a full backend build
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	backend := r.URL.Query().Get("backend")

	result, err := h.service.Build(backend)
	if err != nil {
		h.log.Error().Err(err).Str("backend", backend).Msg("Backend build failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetProperties handles GET /properties
func (h *Handler) HandleGetProperties(w http.ResponseWriter, r *http.Request) {
	props, err := h.service.Properties(r.URL.Query().Get("backend"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(props)
}

// HandleGetConfiguration handles GET /configuration
func (h *Handler) HandleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	conf, err := h.service.Configuration(r.URL.Query().Get("backend"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conf)
}

// HandleGetArtifacts handles GET /artifacts
func (h *Handler) HandleGetArtifacts(w http.ResponseWriter, r *http.Request) {
	artifacts, err := h.service.Artifacts(r.URL.Query().Get("backend"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list artifacts")
		http.Error(w, "Failed to retrieve artifacts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(artifacts)
}
