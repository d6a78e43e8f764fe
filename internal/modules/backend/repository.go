package backend

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/huayilab/calforge/internal/database/repositories"
)

// Repository persists artifact bookkeeping
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new backend artifact repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "backend").Logger()),
	}
}

// SaveArtifact records a written artifact
func (r *Repository) SaveArtifact(a Artifact) error {
	_, err := r.DB().Exec(`
		INSERT INTO artifacts (run_id, backend, kind, path, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.RunID, a.Backend, a.Kind, a.Path, a.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert artifact: %w", err)
	}
	return nil
}

// GetArtifacts returns all artifacts for a backend, newest first
func (r *Repository) GetArtifacts(backend string) ([]Artifact, error) {
	rows, err := r.DB().Query(`
		SELECT run_id, backend, kind, path, created_at
		FROM artifacts
		WHERE backend = ?
		ORDER BY created_at DESC, id DESC`, backend)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var (
			a    Artifact
			date string
		)
		if err := rows.Scan(&a.RunID, &a.Backend, &a.Kind, &a.Path, &date); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse artifact time: %w", err)
		}
		a.CreatedAt = createdAt
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating artifacts: %w", err)
	}
	return artifacts, nil
}
