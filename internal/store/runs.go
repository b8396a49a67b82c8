package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/roach88/gkquad/internal/ir"
)

// ErrNotFound is returned by ReadRun when no run has the given ID.
var ErrNotFound = errors.New("run not found")

// RunFilter narrows ListRuns. Zero-value fields do not filter.
type RunFilter struct {
	Integrand string
	JobHash   string
	Limit     int
}

const runColumns = `seq, id, job_hash, job_name, integrand, params,
	a, b, epsabs, epsrel, max_step,
	integral, error, regions, initial, iterations, evaluations, degenerate,
	elapsed_ns, created_at, engine_version`

// WriteRun appends a run and returns its seq.
// Writing a run whose ID already exists is a no-op that returns the seq of
// the stored row.
func (s *Store) WriteRun(ctx context.Context, run ir.Run) (int64, error) {
	if run.ID == "" {
		return 0, fmt.Errorf("WriteRun: run ID is required")
	}

	params, err := marshalParams(run.Job.Params)
	if err != nil {
		return 0, fmt.Errorf("WriteRun: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, job_hash, job_name, integrand, params,
			a, b, epsabs, epsrel, max_step,
			integral, error, regions, initial, iterations, evaluations, degenerate,
			elapsed_ns, created_at, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID, run.JobHash, run.Job.Name, run.Job.Integrand, params,
		run.Job.A, run.Job.B, run.Job.EpsAbs, run.Job.EpsRel, run.Job.MaxStep,
		nullableFloat(run.Integral), nullableFloat(run.Error),
		run.Regions, run.Initial, run.Iterations, run.Evaluations, boolToInt(run.Degenerate),
		int64(run.Elapsed), run.CreatedAt.UTC().Format(time.RFC3339Nano), run.EngineVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("WriteRun: insert: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("WriteRun: rows affected: %w", err)
	}
	if affected == 1 {
		seq, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("WriteRun: last insert id: %w", err)
		}
		return seq, nil
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("WriteRun: lookup existing: %w", err)
	}
	return seq, nil
}

// ReadRun returns the run with the given ID.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Run{}, fmt.Errorf("ReadRun %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return ir.Run{}, fmt.Errorf("ReadRun %q: %w", id, err)
	}
	return run, nil
}

// ListRuns returns runs matching filter, most recent first.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ListRuns(ctx context.Context, filter RunFilter) ([]ir.Run, error) {
	var (
		where []string
		args  []any
	)
	if filter.Integrand != "" {
		where = append(where, "integrand = ?")
		args = append(args, filter.Integrand)
	}
	if filter.JobHash != "" {
		where = append(where, "job_hash = ?")
		args = append(args, filter.JobHash)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY seq DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: query: %w", err)
	}
	defer rows.Close()

	runs := make([]ir.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRuns: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRuns: iterate: %w", err)
	}
	return runs, nil
}

// CountRuns returns the number of stored runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("CountRuns: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (ir.Run, error) {
	var (
		run        ir.Run
		params     string
		integral   sql.NullFloat64
		errEst     sql.NullFloat64
		degenerate int
		elapsed    int64
		createdAt  string
	)
	err := row.Scan(
		&run.Seq, &run.ID, &run.JobHash, &run.Job.Name, &run.Job.Integrand, &params,
		&run.Job.A, &run.Job.B, &run.Job.EpsAbs, &run.Job.EpsRel, &run.Job.MaxStep,
		&integral, &errEst, &run.Regions, &run.Initial, &run.Iterations, &run.Evaluations, &degenerate,
		&elapsed, &createdAt, &run.EngineVersion,
	)
	if err != nil {
		return ir.Run{}, err
	}

	if run.Job.Params, err = unmarshalParams(params); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	run.Integral = floatOrNaN(integral)
	run.Error = floatOrNaN(errEst)
	run.Degenerate = degenerate != 0
	run.Elapsed = time.Duration(elapsed)
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return ir.Run{}, fmt.Errorf("run %s: parse created_at: %w", run.ID, err)
	}
	return run, nil
}

// marshalParams stores params as canonical JSON so equal parameter sets
// compare equal as text.
func marshalParams(params map[string]float64) (string, error) {
	if params == nil {
		params = map[string]float64{}
	}
	b, err := ir.MarshalCanonical(params)
	if err != nil {
		return "", fmt.Errorf("marshal params: %w", err)
	}
	return string(b), nil
}

// unmarshalParams returns nil for an empty object, matching a Job decoded
// without params.
func unmarshalParams(s string) (map[string]float64, error) {
	var params map[string]float64
	if err := json.Unmarshal([]byte(s), &params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

func nullableFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f)}
}

func floatOrNaN(f sql.NullFloat64) float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Float64
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
