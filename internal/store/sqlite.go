package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/prefgrow/internal/simulation"
)

// timeFormat is fixed-width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRunStore implements RunStore on a SQLite database.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

var _ RunStore = (*SQLiteRunStore)(nil)

// Open opens (creating if needed) the run store at dbPath.
func Open(dbPath string) (*SQLiteRunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with single writer
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// SaveRun stores a finished run and returns its ID. An empty run.ID is
// assigned from the run's content and creation time.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.Series == nil {
		return "", fmt.Errorf("run series is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	if run.ID == "" {
		run.ID = runID(run)
	}

	labels, err := json.Marshal(nonNil(run.Definition.Labels))
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	firstWins, err := json.Marshal(nonNil(run.Definition.FirstWins))
	if err != nil {
		return "", fmt.Errorf("failed to encode first_wins: %w", err)
	}
	seedDegrees, err := json.Marshal(nonNil(run.Definition.SeedDegrees))
	if err != nil {
		return "", fmt.Errorf("failed to encode seed_degrees: %w", err)
	}
	initial, err := json.Marshal(nonNil(run.Series.Initial))
	if err != nil {
		return "", fmt.Errorf("failed to encode initial: %w", err)
	}
	finalDegrees, err := json.Marshal(nonNil(run.Series.FinalDegrees))
	if err != nil {
		return "", fmt.Errorf("failed to encode final_degrees: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, name, title, created_at, seed, steps, recording_interval,
			labels, first_wins, seed_degrees, initial, final_degrees, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Definition.Name, run.Title, run.CreatedAt.UTC().Format(timeFormat),
		int64(run.Seed), run.Series.Steps, run.Series.RecordingInterval,
		string(labels), string(firstWins), string(seedDegrees), string(initial), string(finalDegrees),
		int64(run.Series.Elapsed))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_points (run_id, step, type_index, proportion) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare point insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range run.Series.Points {
		for k, v := range p.Proportions {
			if _, err := stmt.ExecContext(ctx, run.ID, p.Step, k, v); err != nil {
				return "", fmt.Errorf("failed to insert point %d/%d: %w", p.Step, k, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.ID, nil
}

// GetRun loads a run with its full series.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		run                                     Run
		title                                   sql.NullString
		createdAt                               string
		seed, elapsed                           int64
		labels, firstWins, seedDegrees, initial string
		finalDegrees                            string
		series                                  simulation.Series
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, title, created_at, seed, steps, recording_interval,
			labels, first_wins, seed_degrees, initial, final_degrees, elapsed_ns
		FROM runs WHERE id = ?`, id).Scan(
		&run.ID, &run.Definition.Name, &title, &createdAt, &seed, &series.Steps, &series.RecordingInterval,
		&labels, &firstWins, &seedDegrees, &initial, &finalDegrees, &elapsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run.Title = title.String
	run.Seed = uint64(seed)
	series.Elapsed = time.Duration(elapsed)
	if run.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	for _, col := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"labels", labels, &run.Definition.Labels},
		{"first_wins", firstWins, &run.Definition.FirstWins},
		{"seed_degrees", seedDegrees, &run.Definition.SeedDegrees},
		{"initial", initial, &series.Initial},
		{"final_degrees", finalDegrees, &series.FinalDegrees},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", col.name, err)
		}
	}
	series.Labels = append([]string(nil), run.Definition.Labels...)
	series.Final = proportions(series.FinalDegrees)

	points, err := s.loadPoints(ctx, id, len(series.Initial))
	if err != nil {
		return nil, err
	}
	series.Points = points
	run.Series = &series
	return &run, nil
}

// loadPoints reads the recorded points of a run in step order.
func (s *SQLiteRunStore) loadPoints(ctx context.Context, id string, types int) ([]simulation.Point, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT step, type_index, proportion FROM run_points WHERE run_id = ? ORDER BY step, type_index`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer rows.Close()

	points := []simulation.Point{}
	for rows.Next() {
		var step int64
		var k int
		var v float64
		if err := rows.Scan(&step, &k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		if n := len(points); n == 0 || points[n-1].Step != step {
			points = append(points, simulation.Point{Step: step, Proportions: make([]float64, types)})
		}
		if k >= 0 && k < types {
			points[len(points)-1].Proportions[k] = v
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate points: %w", err)
	}
	return points, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT r.id, r.name, r.title, r.created_at, r.seed, r.steps, r.recording_interval,
			(SELECT COUNT(DISTINCT p.step) FROM run_points p WHERE p.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var rs RunSummary
		var title sql.NullString
		var createdAt string
		var seed int64
		if err := rows.Scan(&rs.ID, &rs.Name, &title, &createdAt, &seed, &rs.Steps, &rs.RecordingInterval, &rs.Points); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rs.Title = title.String
		rs.Seed = uint64(seed)
		if rs.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		runs = append(runs, rs)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its points.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// runID derives a short stable ID from the run's identity.
func runID(run Run) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s", run.Definition.Name, run.Seed, run.Series.Steps, run.CreatedAt.UTC().Format(time.RFC3339Nano))
	return "run-" + hex.EncodeToString(h.Sum(nil))[:12]
}

func proportions(degrees []int64) []float64 {
	var total int64
	for _, d := range degrees {
		total += d
	}
	out := make([]float64, len(degrees))
	if total <= 0 {
		return out
	}
	for i, d := range degrees {
		out[i] = float64(d) / float64(total)
	}
	return out
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
