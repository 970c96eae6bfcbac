// Package store keeps a history of layout runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/piwi3910/CubbyCut/internal/engine"
)

var (
	// ErrNotFound is returned when no run matches an id.
	ErrNotFound = errors.New("run not found")
	// ErrAmbiguous is returned when an id prefix matches several runs.
	ErrAmbiguous = errors.New("run id prefix is ambiguous")
	// ErrNoSolution is returned when saving a run without a solution.
	ErrNoSolution = errors.New("run has no solution")
	// ErrEmptyID is returned when looking up a run by an empty id.
	ErrEmptyID = errors.New("run id is empty")
)

// likeEscaper quotes the LIKE wildcards of an id prefix.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store wraps the runs database.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// CubbyArea is the stored area of one shape's cubby.
type CubbyArea struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Area  int    `json:"area"`
}

// Run is one stored optimization. Solution is nil in listings.
type Run struct {
	ID         string           `json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	Title      string           `json:"title"`
	Seed       int64            `json:"seed"`
	Score      int              `json:"score"`
	Valid      bool             `json:"valid"`
	Stuck      bool             `json:"stuck"`
	ShapeCount int              `json:"shape_count"`
	WallLength float64          `json:"wall_length"`
	Solution   *engine.Solution `json:"solution,omitempty"`
	Cubbies    []CubbyArea      `json:"cubbies,omitempty"`
}

// Open opens or creates the database at path and applies migrations.
// A nil logger disables migration logging.
func Open(path string, logger *log.Logger) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps in-memory databases shared and writes serialized
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun assigns an id and creation time when missing and stores the run
// with its cubbies. Score, validity and shape count come from the solution.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.Solution == nil {
		return ErrNoSolution
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.Score = run.Solution.Score
	run.Valid = run.Solution.Valid
	run.ShapeCount = len(run.Solution.Placements)

	solution, err := json.Marshal(run.Solution)
	if err != nil {
		return fmt.Errorf("failed to marshal solution: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, title, seed, score, valid, stuck, shape_count, wall_length, solution)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UnixMilli(), run.Title, run.Seed, run.Score,
		run.Valid, run.Stuck, run.ShapeCount, run.WallLength, string(solution))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, c := range run.Cubbies {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cubbies (run_id, idx, title, area) VALUES (?, ?, ?, ?)`,
			run.ID, c.Index, c.Title, c.Area); err != nil {
			return fmt.Errorf("failed to insert cubby %d: %w", c.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// resolveID expands a unique id prefix to the full id. The prefix is matched
// literally.
func (s *Store) resolveID(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrEmptyID
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, likeEscaper.Replace(prefix)+"%")
	if err != nil {
		return "", fmt.Errorf("failed to look up run: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%s: %w", prefix, ErrAmbiguous)
	}
}

// GetRun loads a run, its solution and its cubbies by id or unique id prefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	id, err := s.resolveID(ctx, idOrPrefix)
	if err != nil {
		return nil, err
	}

	var (
		run      Run
		created  int64
		solution string
	)
	err = s.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, seed, score, valid, stuck, shape_count, wall_length, solution
		FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &created, &run.Title, &run.Seed, &run.Score, &run.Valid,
			&run.Stuck, &run.ShapeCount, &run.WallLength, &solution)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}
	run.CreatedAt = time.UnixMilli(created).UTC()

	run.Solution = &engine.Solution{}
	if err := json.Unmarshal([]byte(solution), run.Solution); err != nil {
		return nil, fmt.Errorf("failed to decode solution of run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, title, area FROM cubbies WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cubbies: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c CubbyArea
		if err := rows.Scan(&c.Index, &c.Title, &c.Area); err != nil {
			return nil, fmt.Errorf("failed to scan cubby: %w", err)
		}
		run.Cubbies = append(run.Cubbies, c)
	}
	return &run, rows.Err()
}

// ListRuns returns run summaries, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, title, seed, score, valid, stuck, shape_count, wall_length
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			created int64
		)
		if err := rows.Scan(&run.ID, &created, &run.Title, &run.Seed, &run.Score, &run.Valid,
			&run.Stuck, &run.ShapeCount, &run.WallLength); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CreatedAt = time.UnixMilli(created).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its cubbies by id or unique id prefix.
func (s *Store) DeleteRun(ctx context.Context, idOrPrefix string) error {
	id, err := s.resolveID(ctx, idOrPrefix)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cubbies WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete cubbies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return tx.Commit()
}
