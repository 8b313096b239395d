package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/roach88/itemcat/internal/catalog"
)

// DefaultPattern selects raw metadata files by name.
const DefaultPattern = "*.json"

var (
	// ErrMalformed marks a raw file that is not valid JSON or repeats a key
	// with conflicting values.
	ErrMalformed = errors.New("malformed metadata")

	// ErrIncomplete marks a raw file that lacks a required field or has one
	// of the wrong type.
	ErrIncomplete = errors.New("missing required fields")
)

// CompileError describes why a single raw file was not accepted.
// It wraps ErrMalformed or ErrIncomplete.
type CompileError struct {
	File    string
	Message string
	Kind    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.File, e.Kind, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

// Options configures a Compiler. Zero values select the defaults.
type Options struct {
	Fields  Fields
	Pattern string
	Order   *catalog.Order
	Logger  *zap.SugaredLogger
}

// Compiler turns raw metadata files into catalog items.
// A Compiler holds a CUE context and is not safe for concurrent use.
type Compiler struct {
	fields  Fields
	pattern string
	order   *catalog.Order
	log     *zap.SugaredLogger
	ctx     *cue.Context
	schema  cue.Value
}

// New creates a Compiler, compiling the raw item schema for opts.Fields.
func New(opts Options) (*Compiler, error) {
	if opts.Fields == (Fields{}) {
		opts.Fields = DefaultFields()
	}
	if err := opts.Fields.Validate(); err != nil {
		return nil, err
	}
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("invalid metadata pattern %q", opts.Pattern)
	}
	if opts.Order == nil {
		opts.Order = catalog.DefaultOrder()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}

	ctx := cuecontext.New()
	schema, err := buildSchema(ctx, opts.Fields)
	if err != nil {
		return nil, err
	}

	return &Compiler{
		fields:  opts.Fields,
		pattern: opts.Pattern,
		order:   opts.Order,
		log:     opts.Logger,
		ctx:     ctx,
		schema:  schema,
	}, nil
}

// FileStatus is the outcome for one raw file.
type FileStatus string

const (
	StatusProcessed FileStatus = "processed"
	StatusSkipped   FileStatus = "skipped"
	StatusErrored   FileStatus = "errored"
)

// FileProblem records a raw file that did not become an item.
type FileProblem struct {
	File   string     `json:"file"`
	Status FileStatus `json:"status"`
	Reason string     `json:"reason"`
}

// Collision records an id or shortname shared by several accepted files.
type Collision struct {
	Field string   `json:"field"` // "id" or "shortname"
	Value string   `json:"value"`
	Files []string `json:"files"`
}

// Result is the output of Compile.
type Result struct {
	Items      catalog.Catalog `json:"items"`
	Files      int             `json:"files"`
	Processed  int             `json:"processed"`
	Skipped    int             `json:"skipped"`
	Errored    int             `json:"errored"`
	Problems   []FileProblem   `json:"problems,omitempty"`
	Collisions []Collision     `json:"collisions,omitempty"`
}

// Compile reads every file in dir matching the metadata pattern and returns
// the accepted items sorted by shortname.
//
// Only a missing or unreadable dir is an error. Problems with individual
// files are counted in the result.
func (c *Compiler) Compile(dir string) (*Result, error) {
	files, err := MatchFiles(dir, c.pattern)
	if err != nil {
		return nil, err
	}

	c.log.Debugw("Compiling metadata files", "dir", dir, "files", len(files))

	result := &Result{Items: catalog.Catalog{}, Files: len(files)}
	var sources []string // file of each accepted item, aligned with result.Items

	for _, name := range files {
		item, err := c.CompileFile(filepath.Join(dir, name))
		if err != nil {
			problem := FileProblem{File: name, Reason: err.Error()}
			var compileErr *CompileError
			if errors.As(err, &compileErr) {
				problem.Reason = compileErr.Message
			}
			if errors.Is(err, ErrIncomplete) {
				problem.Status = StatusSkipped
				result.Skipped++
				c.log.Warnw("Skipping metadata file: missing required fields", "file", name, "reason", problem.Reason)
			} else {
				problem.Status = StatusErrored
				result.Errored++
				c.log.Warnw("Failed to process metadata file", "file", name, "error", problem.Reason)
			}
			result.Problems = append(result.Problems, problem)
			continue
		}

		result.Items = append(result.Items, item)
		sources = append(sources, name)
		result.Processed++
	}

	result.Collisions = findCollisions(result.Items, sources)
	for _, col := range result.Collisions {
		c.log.Warnw("Duplicate key across metadata files", "field", col.Field, "value", col.Value, "files", col.Files)
	}

	c.order.Sort(result.Items)

	c.log.Infow("Compiled item metadata",
		"processed", result.Processed,
		"skipped", result.Skipped,
		"errored", result.Errored)

	return result, nil
}

// CompileFile parses a single raw file into an item. Errors are
// *CompileError unless the file cannot be read at all.
func (c *Compiler) CompileFile(path string) (catalog.Item, error) {
	name := filepath.Base(path)
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Item{}, fmt.Errorf("reading %s: %w", name, err)
	}
	return c.CompileBytes(name, data)
}

// CompileBytes parses raw metadata content. name is used in error messages.
func (c *Compiler) CompileBytes(name string, data []byte) (catalog.Item, error) {
	expr, err := cuejson.Extract(name, data)
	if err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrMalformed}
	}
	v := c.ctx.BuildExpr(expr)
	if err := v.Err(); err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrMalformed}
	}

	raw := c.schema.Unify(v)
	if err := raw.Validate(cue.Concrete(true)); err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrIncomplete}
	}

	id, err := raw.LookupPath(cue.MakePath(cue.Str(c.fields.ID))).Int64()
	if err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrIncomplete}
	}
	shortname, err := raw.LookupPath(cue.MakePath(cue.Str(c.fields.Shortname))).String()
	if err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrIncomplete}
	}
	display, err := raw.LookupPath(cue.MakePath(cue.Str(c.fields.Name))).String()
	if err != nil {
		return catalog.Item{}, &CompileError{File: name, Message: firstCUEError(err), Kind: ErrIncomplete}
	}

	var description string
	if d := raw.LookupPath(cue.MakePath(cue.Str(c.fields.Description))); d.Exists() && d.Kind() == cue.StringKind {
		description, _ = d.String()
	}

	return catalog.Item{
		ID:          id,
		Shortname:   shortname,
		Name:        display,
		Description: description,
	}, nil
}

// MatchFiles lists the regular files directly inside dir whose names match
// pattern, in lexical order.
func MatchFiles(dir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", pattern, err)
		}
		if ok {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// firstCUEError returns the message of the first error in a CUE error list.
func firstCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}

// findCollisions groups accepted files by id and by shortname and returns
// every group with more than one file, ids first, in first-seen order.
func findCollisions(items catalog.Catalog, sources []string) []Collision {
	byID := make(map[int64][]string)
	byShortname := make(map[string][]string)
	var ids []int64
	var shortnames []string

	for i, item := range items {
		if _, ok := byID[item.ID]; !ok {
			ids = append(ids, item.ID)
		}
		byID[item.ID] = append(byID[item.ID], sources[i])

		if _, ok := byShortname[item.Shortname]; !ok {
			shortnames = append(shortnames, item.Shortname)
		}
		byShortname[item.Shortname] = append(byShortname[item.Shortname], sources[i])
	}

	var collisions []Collision
	for _, id := range ids {
		if files := byID[id]; len(files) > 1 {
			collisions = append(collisions, Collision{Field: "id", Value: strconv.FormatInt(id, 10), Files: files})
		}
	}
	for _, s := range shortnames {
		if files := byShortname[s]; len(files) > 1 {
			collisions = append(collisions, Collision{Field: "shortname", Value: s, Files: files})
		}
	}
	return collisions
}
