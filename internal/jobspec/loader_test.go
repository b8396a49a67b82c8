package jobspec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gkquad/internal/ir"
)

func newTestLoader(t *testing.T) *Loader {
	t.Helper()
	l, err := NewLoader()
	require.NoError(t, err)
	return l
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireLoadError(t *testing.T, err error, code string) *LoadError {
	t.Helper()
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le), "expected *LoadError, got %T: %v", err, err)
	assert.Equal(t, code, le.Code, "error: %v", err)
	return le
}

func TestLoadFile_Basic(t *testing.T) {
	jobs, err := newTestLoader(t).LoadFile("testdata/basic.cue")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, ir.Job{
		Name:      "unit_square",
		Integrand: "polynomial",
		A:         0,
		B:         1,
		EpsAbs:    0,
		EpsRel:    1e-10,
		MaxStep:   1e300,
	}, jobs[0])

	assert.Equal(t, ir.Job{
		Name:      "wide-sin",
		Integrand: "sin",
		Params:    map[string]float64{"freq": 3, "amp": 2},
		A:         0,
		B:         10,
		EpsAbs:    0,
		EpsRel:    1e-12,
		MaxStep:   0.5,
	}, jobs[1])
}

func TestLoadBytes_EmptyJobs(t *testing.T) {
	jobs, err := newTestLoader(t).LoadBytes("empty.cue", []byte(`jobs: {}`))
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestLoadBytes_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"reversed bounds", `jobs: j: {integrand: "sin", a: 1, b: 0}`},
		{"equal bounds", `jobs: j: {integrand: "sin", a: 1, b: 1}`},
		{"missing integrand", `jobs: j: {a: 0, b: 1}`},
		{"empty integrand", `jobs: j: {integrand: "", a: 0, b: 1}`},
		{"missing bound", `jobs: j: {integrand: "sin", a: 0}`},
		{"string bound", `jobs: j: {integrand: "sin", a: "0", b: 1}`},
		{"negative epsrel", `jobs: j: {integrand: "sin", a: 0, b: 1, epsrel: -1}`},
		{"zero max_step", `jobs: j: {integrand: "sin", a: 0, b: 1, max_step: 0}`},
		{"unknown field", `jobs: j: {integrand: "sin", a: 0, b: 1, tolerance: 1e-3}`},
		{"non-numeric param", `jobs: j: {integrand: "sin", a: 0, b: 1, params: {freq: "fast"}}`},
	}

	l := newTestLoader(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.LoadBytes("bad.cue", []byte(tt.src))
			le := requireLoadError(t, err, ErrCodeSchema)
			assert.NotEmpty(t, le.Message)
		})
	}
}

func TestLoadBytes_ParseError(t *testing.T) {
	_, err := newTestLoader(t).LoadBytes("broken.cue", []byte("jobs: {\n  j: {\n"))
	le := requireLoadError(t, err, ErrCodeParse)
	assert.True(t, le.Pos.IsValid())
	assert.Equal(t, "broken.cue", le.Pos.Filename())
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := newTestLoader(t).LoadFile(filepath.Join(t.TempDir(), "nope.cue"))
	requireLoadError(t, err, ErrCodeNotFound)
}

func TestLoadDir_MergesFilesSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.cue", `jobs: zeta: {integrand: "exp", a: 0, b: 2}`)
	writeFile(t, dir, "a.cue", `jobs: alpha: {integrand: "constant", params: c: 3, a: -1, b: 1}`)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.cue"), 0o755))

	jobs, err := newTestLoader(t).LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "alpha", jobs[0].Name)
	assert.Equal(t, map[string]float64{"c": 3}, jobs[0].Params)
	assert.Equal(t, "zeta", jobs[1].Name)
}

func TestLoadDir_Duplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", `jobs: same: {integrand: "exp", a: 0, b: 2}`)
	writeFile(t, dir, "b.cue", `jobs: same: {integrand: "sin", a: 0, b: 2}`)

	_, err := newTestLoader(t).LoadDir(dir)
	le := requireLoadError(t, err, ErrCodeDuplicate)
	assert.Contains(t, le.Message, "same")
}

func TestLoadDir_NoFiles(t *testing.T) {
	_, err := newTestLoader(t).LoadDir(t.TempDir())
	requireLoadError(t, err, ErrCodeNoFiles)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := newTestLoader(t).LoadDir(filepath.Join(t.TempDir(), "missing"))
	requireLoadError(t, err, ErrCodeNotFound)
}

func TestLoadDir_StopsOnBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", `jobs: ok: {integrand: "exp", a: 0, b: 2}`)
	writeFile(t, dir, "b.cue", `jobs: bad: {integrand: "exp", a: 2, b: 0}`)

	_, err := newTestLoader(t).LoadDir(dir)
	requireLoadError(t, err, ErrCodeSchema)
}

func TestLoadPath_FileOrDir(t *testing.T) {
	jobs, err := LoadPath("testdata/basic.cue")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	jobs, err = LoadPath("testdata")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestLoadError_Format(t *testing.T) {
	e := &LoadError{Code: ErrCodeNoFiles, Message: "none"}
	assert.Equal(t, "NO_FILES: none", e.Error())
}
