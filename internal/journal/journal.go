// Package journal persists a write-only record of completed pipeline
// runs via DuckDB. It is a diagnostics sink: the pipeline appends,
// the status command reads, and nothing in the generation path ever
// depends on its contents.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/google/uuid"
	"github.com/tanachan3/looqn-all/internal/pipeline"
)

// Store holds the DuckDB handle for the run journal.
type Store struct {
	DB *sql.DB
}

// Entry is one recorded run as read back by the status command.
type Entry struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Language     string    `json:"language"`
	RadiusMeters int       `json:"radius_meters"`
	Count        int       `json:"count"`
	Landmarks    []string  `json:"landmarks"`
	Personas     []string  `json:"personas"`
	StylePlan    []string  `json:"style_plan"`
	MessageCount int       `json:"message_count"`
	Degraded     bool      `json:"degraded"`
}

// Open opens (or creates) the journal database in the given data directory.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "runs.duckdb")
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}

	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) migrate() error {
	_, err := s.DB.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		latitude DOUBLE NOT NULL,
		longitude DOUBLE NOT NULL,
		language TEXT NOT NULL,
		radius_meters INTEGER NOT NULL,
		requested_count INTEGER NOT NULL,
		landmarks TEXT,
		localized TEXT,
		personas TEXT,
		style_plan TEXT,
		messages TEXT,
		message_count INTEGER NOT NULL,
		degraded BOOLEAN NOT NULL
	)`)
	return err
}

// Append records one completed run.
func (s *Store) Append(ctx context.Context, run pipeline.Run) error {
	landmarks, err := json.Marshal(run.Landmarks)
	if err != nil {
		return fmt.Errorf("encoding landmarks: %w", err)
	}
	localized, err := json.Marshal(run.Localized)
	if err != nil {
		return fmt.Errorf("encoding localized terms: %w", err)
	}
	personas, err := json.Marshal(run.Personas)
	if err != nil {
		return fmt.Errorf("encoding personas: %w", err)
	}
	stylePlan, err := json.Marshal(run.StylePlan)
	if err != nil {
		return fmt.Errorf("encoding style plan: %w", err)
	}
	messages, err := json.Marshal(run.Messages)
	if err != nil {
		return fmt.Errorf("encoding messages: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, latitude, longitude, language, radius_meters,
			requested_count, landmarks, localized, personas, style_plan, messages,
			message_count, degraded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		run.StartedAt,
		run.Request.Position.Latitude,
		run.Request.Position.Longitude,
		run.Request.Language,
		run.Request.RadiusMeters,
		run.Request.Count,
		string(landmarks),
		string(localized),
		string(personas),
		string(stylePlan),
		string(messages),
		len(run.Messages),
		run.Degraded,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// Recent returns the latest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, started_at, latitude, longitude, language, radius_meters,
			requested_count, landmarks, personas, style_plan, message_count, degraded
		FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var landmarksJSON, personasJSON, styleJSON string
		if err := rows.Scan(&e.ID, &e.StartedAt, &e.Latitude, &e.Longitude, &e.Language,
			&e.RadiusMeters, &e.Count, &landmarksJSON, &personasJSON, &styleJSON,
			&e.MessageCount, &e.Degraded); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		e.Landmarks = decodeNameList(landmarksJSON, "name")
		e.Personas = decodeNameList(personasJSON, "label")
		_ = json.Unmarshal([]byte(styleJSON), &e.StylePlan)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts reports total and degraded run counts.
func (s *Store) Counts(ctx context.Context) (total, degraded int, err error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE degraded) FROM runs`)
	if err := row.Scan(&total, &degraded); err != nil {
		return 0, 0, fmt.Errorf("counting runs: %w", err)
	}
	return total, degraded, nil
}

// decodeNameList pulls one string field out of a JSON array of objects.
func decodeNameList(raw, field string) []string {
	var objs []map[string]any
	if err := json.Unmarshal([]byte(raw), &objs); err != nil {
		return nil
	}
	var out []string
	for _, o := range objs {
		if s, ok := o[field].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
