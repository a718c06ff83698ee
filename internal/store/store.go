// Package store persists backtest runs to Postgres so research results
// can be compared across configurations. Persistence is optional; the CLI
// only opens a store when a DSN is configured.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/sectorlab/factorwalk/internal/model"
)

// Store wraps a Postgres connection.
type Store struct {
	*sql.DB
}

// Open connects to Postgres and ensures the schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			model TEXT NOT NULL,
			initial_size INT NOT NULL,
			assess_size INT NOT NULL,
			cumulative BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			run_id UUID NOT NULL REFERENCES runs(id),
			sector TEXT NOT NULL,
			slice_id TEXT NOT NULL,
			date DATE NOT NULL,
			predicted DOUBLE PRECISION NOT NULL,
			actual DOUBLE PRECISION NOT NULL
		)
	`)
	return err
}

// RunConfig describes one backtest run for the runs table.
type RunConfig struct {
	Model       string
	InitialSize int
	AssessSize  int
	Cumulative  bool
}

// CreateRun inserts a run row and returns its generated id.
func (s *Store) CreateRun(cfg RunConfig) (string, error) {
	id := uuid.New().String()
	_, err := s.Exec(`
		INSERT INTO runs (id, created_at, model, initial_size, assess_size, cumulative)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, time.Now().UTC(), cfg.Model, cfg.InitialSize, cfg.AssessSize, cfg.Cumulative)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// SavePredictions inserts one sector's evaluation records in a single
// transaction.
func (s *Store) SavePredictions(runID, sector string, records []model.Record) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO predictions (run_id, sector, slice_id, date, predicted, actual)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(runID, sector, r.Slice, r.Date, r.Predicted, r.Actual); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting prediction for %s %s: %w", sector, r.Slice, err)
		}
	}
	return tx.Commit()
}
