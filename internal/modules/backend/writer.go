package backend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/huayilab/calforge/internal/modules/noise"
)

// Snapshot bundles a built noise model with its provenance for compact
// binary persistence.
type Snapshot struct {
	Backend   string            `msgpack:"backend"`
	Version   string            `msgpack:"version"`
	RunID     string            `msgpack:"run_id"`
	CreatedAt time.Time         `msgpack:"created_at"`
	Model     *noise.NoiseModel `msgpack:"model"`
}

// Writer persists backend artifacts to the artifact directory.
type Writer struct {
	dir string
	log zerolog.Logger
}

// NewWriter creates an artifact writer
func NewWriter(dir string, log zerolog.Logger) *Writer {
	return &Writer{
		dir: dir,
		log: log.With().Str("component", "artifact_writer").Logger(),
	}
}

// WriteProperties writes props_<backend>.json
func (w *Writer) WriteProperties(props *Properties) (string, error) {
	return w.writeJSON(fmt.Sprintf("props_%s.json", props.BackendName), props)
}

// WriteConfiguration writes conf_<backend>.json
func (w *Writer) WriteConfiguration(conf *Configuration) (string, error) {
	return w.writeJSON(fmt.Sprintf("conf_%s.json", conf.BackendName), conf)
}

// WriteSnapshot writes snapshot_<backend>.msgpack
func (w *Writer) WriteSnapshot(snap *Snapshot) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("snapshot_%s.msgpack", snap.Backend))
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	w.log.Info().Str("path", path).Msg("Snapshot written")
	return path, nil
}

// ReadSnapshot loads a snapshot artifact back
func (w *Writer) ReadSnapshot(backendName string) (*Snapshot, error) {
	path := filepath.Join(w.dir, fmt.Sprintf("snapshot_%s.msgpack", backendName))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func (w *Writer) writeJSON(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}

	w.log.Info().Str("path", path).Msg("Artifact written")
	return path, nil
}
