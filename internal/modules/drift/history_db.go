package drift

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
	"github.com/rs/zerolog"
)

// HistoryDB stores long-lived measurement series, one database file per
// backend, separate from the main calibration store.
type HistoryDB struct {
	historyDir string
	log        zerolog.Logger
}

// NewHistoryDB creates a new history database accessor
func NewHistoryDB(historyDir string, log zerolog.Logger) *HistoryDB {
	return &HistoryDB{
		historyDir: historyDir,
		log:        log.With().Str("component", "history_db").Logger(),
	}
}

// Point is one historical value of a measurement series
type Point struct {
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at"`
}

// Append adds measurements to a backend's history. Series names follow
// "qubit:<index>:<measurement>" and "gate:<label>:<measurement>".
func (h *HistoryDB) Append(backend string, series string, points []Point) error {
	db, err := h.openHistoryDB(backend)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, p := range points {
		_, err := db.Exec(`
			INSERT INTO measurement_history (series, value, measured_at)
			VALUES (?, ?, ?)`,
			series, p.Value, p.MeasuredAt.Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to insert history point: %w", err)
		}
	}
	return nil
}

// GetSeries fetches a measurement series oldest-first, capped at limit points
func (h *HistoryDB) GetSeries(backend, series string, limit int) ([]Point, error) {
	db, err := h.openHistoryDB(backend)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := `
		SELECT value, measured_at FROM (
			SELECT id, value, measured_at
			FROM measurement_history
			WHERE series = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`

	rows, err := db.Query(query, series, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history series: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var (
			p    Point
			date string
		)
		if err := rows.Scan(&p.Value, &date); err != nil {
			return nil, fmt.Errorf("failed to scan history point: %w", err)
		}
		measuredAt, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("failed to parse history time: %w", err)
		}
		p.MeasuredAt = measuredAt
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history points: %w", err)
	}
	return points, nil
}

// ListSeries returns the distinct series names recorded for a backend
func (h *HistoryDB) ListSeries(backend string) ([]string, error) {
	db, err := h.openHistoryDB(backend)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT DISTINCT series FROM measurement_history ORDER BY series`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history series: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan series name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating series names: %w", err)
	}
	return names, nil
}

func (h *HistoryDB) openHistoryDB(backend string) (*sql.DB, error) {
	if err := os.MkdirAll(h.historyDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	path := filepath.Join(h.historyDir, fmt.Sprintf("%s.db", backend))
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS measurement_history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			series      TEXT NOT NULL,
			value       REAL NOT NULL,
			measured_at TEXT NOT NULL
		)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_history_series ON measurement_history(series, id)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history index: %w", err)
	}

	return db, nil
}
