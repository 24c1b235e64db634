// Package runlog keeps a history of annotation runs in a SQLite database.
package runlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/track-overlay/internal/annotate"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run is one row of the history.
type Run struct {
	ID              string
	StartedAt       time.Time
	Elapsed         time.Duration
	Backend         string
	Input           string
	Output          string
	Width           int
	Height          int
	FPS             float64
	FramesRead      int
	FramesAnnotated int
	BoxesDrawn      int
	Tracks          int
	MeanBoxes       float64
	MaxBoxes        int
	Status          string
	Error           string
}

// RunFromSummary converts a completed pipeline run into a history row.
func RunFromSummary(sum *annotate.Summary) Run {
	return Run{
		ID:              sum.RunID,
		StartedAt:       sum.Started,
		Elapsed:         sum.Elapsed,
		Backend:         sum.Backend,
		Input:           sum.Input,
		Output:          sum.Output,
		Width:           sum.Info.Width,
		Height:          sum.Info.Height,
		FPS:             sum.Info.FPS,
		FramesRead:      sum.FramesRead,
		FramesAnnotated: sum.FramesAnnotated,
		BoxesDrawn:      sum.BoxesDrawn,
		Tracks:          sum.Tracks,
		MeanBoxes:       sum.MeanBoxesPerFrame(),
		MaxBoxes:        sum.MaxBoxesPerFrame(),
		Status:          StatusOK,
	}
}

// Store is an open run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and brings its schema up to
// date.
func Open(path string) (*Store, error) {
	s, err := OpenNoMigrate(path)
	if err != nil {
		return nil, err
	}
	if err := s.MigrateUp(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenNoMigrate opens the database without touching its schema. The migrate
// command uses it to inspect and change schema versions explicitly.
func OpenNoMigrate(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure run log: %w", err)
	}
	diagf("opened %s", path)
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts r. Recording the same run id twice is an error.
func (s *Store) Record(r Run) error {
	if r.ID == "" {
		return fmt.Errorf("run has no id")
	}
	if r.Status == "" {
		r.Status = StatusOK
	}
	_, err := s.db.Exec(`
		INSERT INTO annotation_runs (
			run_id, started_unix_ns, elapsed_ms, backend, input_path, output_path,
			width, height, fps, frames_read, frames_annotated, boxes_drawn, tracks,
			mean_boxes, max_boxes, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt.UnixNano(), r.Elapsed.Milliseconds(), r.Backend, r.Input, r.Output,
		r.Width, r.Height, r.FPS, r.FramesRead, r.FramesAnnotated, r.BoxesDrawn, r.Tracks,
		r.MeanBoxes, r.MaxBoxes, r.Status, r.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	tracef("recorded run %s (%s)", r.ID, r.Status)
	return nil
}

// Recent returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_unix_ns, elapsed_ms, backend, input_path, output_path,
			width, height, fps, frames_read, frames_annotated, boxes_drawn, tracks,
			mean_boxes, max_boxes, status, error
		FROM annotation_runs
		ORDER BY started_unix_ns DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedNs, elapsedMs int64
		if err := rows.Scan(
			&r.ID, &startedNs, &elapsedMs, &r.Backend, &r.Input, &r.Output,
			&r.Width, &r.Height, &r.FPS, &r.FramesRead, &r.FramesAnnotated, &r.BoxesDrawn, &r.Tracks,
			&r.MeanBoxes, &r.MaxBoxes, &r.Status, &r.Error,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, startedNs)
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}
