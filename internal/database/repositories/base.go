package repositories

import (
	"database/sql"

	"github.com/rs/zerolog"
)

// BaseRepository provides common database access for module repositories
type BaseRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewBase creates a new base repository
func NewBase(db *sql.DB, log zerolog.Logger) *BaseRepository {
	return &BaseRepository{
		db:  db,
		log: log,
	}
}

// DB returns the database connection
func (r *BaseRepository) DB() *sql.DB {
	return r.db
}

// Log returns the repository logger
func (r *BaseRepository) Log() zerolog.Logger {
	return r.log
}
