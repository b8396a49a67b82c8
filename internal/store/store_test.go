package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gkquad/internal/ir"
)

// createTestStore opens a fresh database in a per-test directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRun(id, integrand string) ir.Run {
	job := ir.Job{
		Name:      "job-" + id,
		Integrand: integrand,
		Params:    map[string]float64{"c": 2.5},
		A:         0,
		B:         1,
		EpsAbs:    0,
		EpsRel:    1e-10,
		MaxStep:   1e300,
	}
	hash, err := ir.JobHash(job)
	if err != nil {
		panic(err)
	}
	return ir.Run{
		ID:            id,
		JobHash:       hash,
		Job:           job,
		Integral:      2.5,
		Error:         2.7e-15,
		Regions:       1,
		Initial:       1,
		Iterations:    0,
		Evaluations:   15,
		Elapsed:       1234 * time.Microsecond,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC),
		EngineVersion: ir.EngineVersion,
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.WriteRun(context.Background(), testRun("r1", "constant"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	n, err := s2.CountRuns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestOpen_CreatesIndexes(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.db.Query(`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = 'runs' AND name LIKE 'idx_%' ORDER BY name`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"idx_runs_integrand", "idx_runs_job_hash"}, names)
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.db.Exec("PRAGMA user_version = 2")
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNewerSchema)
	assert.Contains(t, err.Error(), "version 2, supported 1")
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := testRun("r1", "constant")
	want.Degenerate = true
	seq, err := s.WriteRun(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	got, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)

	want.Seq = seq
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRun_DuplicateIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, err := s.WriteRun(ctx, testRun("r1", "constant"))
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, testRun("r2", "constant"))
	require.NoError(t, err)

	changed := testRun("r1", "constant")
	changed.Integral = 99
	again, err := s.WriteRun(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	got, err := s.ReadRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.Integral, "first write wins")
}

func TestWriteRun_RequiresID(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteRun(context.Background(), testRun("", "constant"))
	assert.Error(t, err)
}

func TestWriteRun_NaNRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("nan", "constant")
	run.Integral = math.NaN()
	run.Error = math.NaN()
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "nan")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Integral))
	assert.True(t, math.IsNaN(got.Error))
}

func TestWriteRun_NilParams(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := testRun("np", "x-sin-x")
	run.Job.Params = nil
	_, err := s.WriteRun(ctx, run)
	require.NoError(t, err)

	got, err := s.ReadRun(ctx, "np")
	require.NoError(t, err)
	assert.Nil(t, got.Job.Params)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRuns_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, r := range []ir.Run{
		testRun("a", "constant"),
		testRun("b", "sin"),
		testRun("c", "constant"),
	} {
		_, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, runIDs(all), "most recent first")

	consts, err := s.ListRuns(ctx, RunFilter{Integrand: "constant"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, runIDs(consts))

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, runIDs(limited))

	byHash, err := s.ListRuns(ctx, RunFilter{JobHash: all[1].JobHash})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, runIDs(byHash))
}

func TestListRuns_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)
	runs, err := s.ListRuns(context.Background(), RunFilter{Integrand: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestListRuns_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListRuns(ctx, RunFilter{})
	assert.Error(t, err)
}

func runIDs(runs []ir.Run) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
