package cli

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gkquad/internal/testutil"
)

const sweepJobs = `
jobs: {
	square: {
		integrand: "polynomial"
		a:         0
		b:         1
	}
	cubic: {
		integrand: "polynomial"
		params: {c2: 0, c3: 1}
		a:        -15
		b:        17
		max_step: 0.25
	}
	half: {
		integrand: "step"
		a:         0
		b:         1
	}
}
`

func writeJobs(t *testing.T, dir, name, src string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))
	return path
}

func TestRunJobsText(t *testing.T) {
	dir := t.TempDir()
	path := writeJobs(t, dir, "sweep.cue", sweepJobs)

	rootOpts := &RootOptions{Format: "text"}
	stdout, _, err := execute(t, NewRunCommand(rootOpts), path)
	require.NoError(t, err)

	// jobs are reported in name order
	assert.Contains(t, stdout, "✓ cubic  integral=8223.99999999997")
	assert.Contains(t, stdout, "regions=9\n")
	assert.Contains(t, stdout, "✓ half  integral=")
	assert.Contains(t, stdout, "✓ square  integral=0.33333333333333")
	assert.Less(t, strings.Index(stdout, "cubic"), strings.Index(stdout, "half"))
	assert.Less(t, strings.Index(stdout, "half"), strings.Index(stdout, "square"))
	assert.Contains(t, stdout, "3 succeeded, 0 failed")
}

func TestRunJobsRecordsToDatabase(t *testing.T) {
	dir := t.TempDir()
	jobsDir := filepath.Join(dir, "jobs")
	writeJobs(t, jobsDir, "sweep.cue", sweepJobs)
	dbPath := filepath.Join(dir, "runs.db")

	rootOpts := &RootOptions{Format: "json", IDGenerator: testutil.NewSequentialIDGenerator("sweep")}
	stdout, _, err := execute(t, NewRunCommand(rootOpts), jobsDir, "--db", dbPath, "--workers", "2")
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, resp.Data.Passed)
	require.Len(t, resp.Data.Jobs, 3)
	for _, j := range resp.Data.Jobs {
		assert.True(t, j.OK, j.Name)
		assert.Regexp(t, `^sweep-000[1-3]$`, j.RunID)
	}

	historyOpts := &RootOptions{Format: "text"}
	stdout, _, err = execute(t, NewHistoryCommand(historyOpts), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "step")
	assert.Contains(t, stdout, "polynomial")
}

func TestRunJobsFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	path := writeJobs(t, dir, "bad.cue", `
jobs: {
	good: {integrand: "sin", a: 0, b: 1}
	typo: {integrand: "sine", a: 0, b: 1}
}
`)

	rootOpts := &RootOptions{Format: "text"}
	stdout, _, err := execute(t, NewRunCommand(rootOpts), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "1 of 2 jobs failed")
	assert.Contains(t, stdout, "✓ good")
	assert.Contains(t, stdout, "✗ typo")
	assert.Contains(t, stdout, "UNKNOWN_INTEGRAND")
	assert.Contains(t, stdout, "1 succeeded, 1 failed")
}

func TestRunJobsNonFiniteResultJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeJobs(t, dir, "flat.cue", `
jobs: {
	flat: {integrand: "gaussian", params: {sigma: 0}, a: -1, b: 1}
	square: {integrand: "polynomial", a: 0, b: 1}
}
`)

	rootOpts := &RootOptions{Format: "json"}
	stdout, _, err := execute(t, NewRunCommand(rootOpts), path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Passed)
	require.Len(t, resp.Data.Jobs, 2)

	flat := resp.Data.Jobs[0]
	assert.Equal(t, "flat", flat.Name)
	assert.True(t, flat.OK)
	assert.True(t, math.IsNaN(float64(flat.Integral)))

	square := resp.Data.Jobs[1]
	assert.InDelta(t, 1.0/3.0, float64(square.Integral), 1e-14)
}

func TestRunJobsLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.MkdirAll(empty, 0755))
	invalid := writeJobs(t, dir, "invalid.cue", `jobs: bad: {integrand: "sin", a: 1, b: 0}`)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"missing directory", "/nonexistent/jobs", "jobs directory not found"},
		{"no cue files", empty, "no CUE files found"},
		{"schema violation", invalid, "SCHEMA_VIOLATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rootOpts := &RootOptions{Format: "text"}
			_, _, err := execute(t, NewRunCommand(rootOpts), tt.path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), "failed to load jobs")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)

	dbFlag := runCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	workersFlag := runCmd.Flags().Lookup("workers")
	require.NotNil(t, workersFlag)
	assert.Equal(t, "0", workersFlag.DefValue)
}
