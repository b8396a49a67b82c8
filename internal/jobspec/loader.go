// Package jobspec loads integration jobs from CUE files.
//
// Job files are unified with an embedded schema (schema.cue) that fills in
// default tolerances and rejects unknown fields, non-numeric bounds and
// b <= a before any job reaches the engine.
package jobspec

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/gkquad/internal/ir"
)

//go:embed schema.cue
var schemaSrc string

// Load error codes.
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeNoFiles    = "NO_FILES"
	ErrCodeParse      = "PARSE_FAILED"
	ErrCodeSchema     = "SCHEMA_VIOLATION"
	ErrCodeDecode     = "DECODE_FAILED"
	ErrCodeDuplicate  = "DUPLICATE_JOB"
	ErrCodeBadSchema  = "SCHEMA_INVALID"
	ErrCodeReadFailed = "READ_FAILED"
)

// LoadError represents an error that occurred while loading job files.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Loader compiles job files against the schema. A Loader holds a CUE
// context and is not safe for concurrent use.
type Loader struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewLoader compiles the embedded schema.
func NewLoader() (*Loader, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#File"))
	if err := schema.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBadSchema, Message: err.Error()}
	}
	return &Loader{ctx: ctx, schema: schema}, nil
}

// LoadFile loads every job declared in one file, sorted by name.
func (l *Loader) LoadFile(path string) ([]ir.Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("job file not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return l.LoadBytes(path, data)
}

// LoadBytes loads jobs from CUE source. filename is used in error
// positions.
func (l *Loader) LoadBytes(filename string, data []byte) ([]ir.Job, error) {
	file := l.ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return nil, formatCUEError(ErrCodeParse, err)
	}

	v := l.schema.Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	iter, err := v.LookupPath(cue.ParsePath("jobs")).Fields()
	if err != nil {
		return nil, formatCUEError(ErrCodeSchema, err)
	}

	jobs := make([]ir.Job, 0)
	for iter.Next() {
		var job ir.Job
		if err := iter.Value().Decode(&job); err != nil {
			return nil, &LoadError{
				Code:    ErrCodeDecode,
				Message: fmt.Sprintf("job %q: %v", iter.Label(), err),
				Pos:     iter.Value().Pos(),
			}
		}
		job.Name = iter.Label()
		jobs = append(jobs, job)
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// LoadDir loads every *.cue file directly inside dir. Job names must be
// unique across files. The result is sorted by name.
func (l *Loader) LoadDir(dir string) ([]ir.Job, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("jobs directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error accessing jobs directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}

	var (
		jobs   []ir.Job
		origin = make(map[string]string)
		files  int
	)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".cue") {
			continue
		}
		files++
		path := filepath.Join(dir, e.Name())
		fileJobs, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		for _, j := range fileJobs {
			if prev, dup := origin[j.Name]; dup {
				return nil, &LoadError{
					Code:    ErrCodeDuplicate,
					Message: fmt.Sprintf("job %q declared in both %s and %s", j.Name, prev, path),
				}
			}
			origin[j.Name] = path
		}
		jobs = append(jobs, fileJobs...)
	}
	if files == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, nil
}

// LoadPath loads a single file or a directory.
func LoadPath(path string) ([]ir.Job, error) {
	l, err := NewLoader()
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return l.LoadFile(path)
	}
	return l.LoadDir(path)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	// Report the first error; CUE often repeats one conflict per reference.
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
