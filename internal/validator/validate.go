package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/roach88/itemcat/internal/catalog"
)

// Issue codes. Critical issues use E2xx, warnings W2xx.
const (
	ErrMissingField       = "E201" // id, shortname or name absent
	ErrInvalidFieldType   = "E202" // field present with the wrong JSON type
	ErrDuplicateID        = "E203" // id used by more than one record
	ErrDuplicateShortname = "E204" // shortname used by more than one record

	WarnEmptyName          = "W201" // name is blank after trimming
	WarnMissingDescription = "W202" // description field absent
	WarnUnsorted           = "W203" // records not in shortname order
)

// Issue is a single validation finding.
type Issue struct {
	Code    string   `json:"code"`
	Index   int      `json:"index,omitempty"` // 1-based record position, 0 for catalog-wide findings
	Field   string   `json:"field,omitempty"`
	Message string   `json:"message"`
	Names   []string `json:"names,omitempty"` // display names involved in a duplicate
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Code, i.Message)
}

// MissingImage is a record whose image file does not exist.
type MissingImage struct {
	File string `json:"file"`
	Name string `json:"name"`
}

func (m MissingImage) String() string {
	return fmt.Sprintf("%s (for %q)", m.File, m.Name)
}

// Summary holds the counts of each finding class.
type Summary struct {
	Items          int `json:"items"`
	CriticalIssues int `json:"critical_issues"`
	Warnings       int `json:"warnings"`
	MissingImages  int `json:"missing_images"`
	OrphanedImages int `json:"orphaned_images"`
}

// Report is the outcome of Validate.
type Report struct {
	Items          int            `json:"items"`
	CriticalIssues []Issue        `json:"critical_issues"`
	Warnings       []Issue        `json:"warnings"`
	MissingImages  []MissingImage `json:"missing_images"`
	OrphanedImages []string       `json:"orphaned_images"`
}

// OK reports whether the catalog has no critical issues.
func (r *Report) OK() bool {
	return len(r.CriticalIssues) == 0
}

// Summary returns the finding counts.
func (r *Report) Summary() Summary {
	return Summary{
		Items:          r.Items,
		CriticalIssues: len(r.CriticalIssues),
		Warnings:       len(r.Warnings),
		MissingImages:  len(r.MissingImages),
		OrphanedImages: len(r.OrphanedImages),
	}
}

// Document is a catalog file decoded without a schema. Each element is
// normally a map[string]any; numbers are json.Number.
type Document []any

// ParseDocument decodes a catalog file. It fails only when data is not a
// JSON array.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing catalog: unexpected data after top-level array")
	}
	if doc == nil {
		return nil, fmt.Errorf("parsing catalog: expected an array")
	}
	return doc, nil
}

// LoadDocument reads and parses the catalog file at path.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseDocument(data)
}

// Options configures Validate.
type Options struct {
	// Order defines the expected record order. Defaults to catalog.DefaultOrder.
	Order *catalog.Order

	// ImagePattern selects files considered images when looking for
	// orphans. Defaults to "*.png".
	ImagePattern string
}

// Validate checks doc and cross-references it with imageDir.
//
// A missing imageDir means every record's image is missing and nothing is
// orphaned. The returned error is reserved for an image directory that
// exists but cannot be read.
func Validate(doc Document, imageDir string, opts Options) (*Report, error) {
	if opts.Order == nil {
		opts.Order = catalog.DefaultOrder()
	}
	if opts.ImagePattern == "" {
		opts.ImagePattern = "*" + catalog.ImageExt
	}

	v := &validation{
		report: &Report{
			Items:          len(doc),
			CriticalIssues: []Issue{},
			Warnings:       []Issue{},
			MissingImages:  []MissingImage{},
			OrphanedImages: []string{},
		},
		idNames:        make(map[int64]string),
		shortnameNames: make(map[string]string),
		shortnames:     make(map[string]bool),
		imageDir:       imageDir,
	}

	sortKeys := make([]string, len(doc))
	for i, elem := range doc {
		sortKeys[i] = v.checkRecord(i+1, elem)
	}

	if err := v.checkOrphans(opts.ImagePattern); err != nil {
		return nil, err
	}

	if !opts.Order.IsSorted(sortKeys) {
		v.warn(Issue{Code: WarnUnsorted, Message: "items are not sorted by shortname"})
	}

	return v.report, nil
}

type validation struct {
	report         *Report
	idNames        map[int64]string
	shortnameNames map[string]string
	shortnames     map[string]bool
	imageDir       string
}

func (v *validation) critical(issue Issue) {
	v.report.CriticalIssues = append(v.report.CriticalIssues, issue)
}

func (v *validation) warn(issue Issue) {
	v.report.Warnings = append(v.report.Warnings, issue)
}

// checkRecord validates one record and returns its shortname for the sort
// check ("" when it has none).
func (v *validation) checkRecord(index int, elem any) string {
	record, ok := elem.(map[string]any)
	if !ok {
		v.critical(Issue{
			Code:    ErrInvalidFieldType,
			Index:   index,
			Message: fmt.Sprintf("item %d: record should be an object, got %s", index, jsonType(elem)),
		})
		return ""
	}

	shortname, shortnameOK := record["shortname"].(string)
	label := "unknown"
	if shortnameOK && shortname != "" {
		label = shortname
	}
	prefix := fmt.Sprintf("item %d (%s)", index, label)

	// Required fields.
	for _, field := range []string{"id", "shortname", "name"} {
		if isMissing(record, field) {
			v.critical(Issue{
				Code:    ErrMissingField,
				Index:   index,
				Field:   field,
				Message: fmt.Sprintf("%s: missing required field '%s'", prefix, field),
			})
		}
	}

	// Types.
	id, idOK := v.checkID(index, prefix, record)
	if !isMissing(record, "shortname") && !shortnameOK {
		v.typeIssue(index, prefix, "shortname", "a string", record["shortname"])
	}
	name, nameOK := record["name"].(string)
	if !isMissing(record, "name") && !nameOK {
		v.typeIssue(index, prefix, "name", "a string", record["name"])
	}
	displayName := name
	if !nameOK {
		displayName = fmt.Sprint(record["name"])
	}

	// Duplicates.
	if idOK {
		if first, seen := v.idNames[id]; seen {
			v.critical(Issue{
				Code:    ErrDuplicateID,
				Index:   index,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id %d: %q and %q", id, displayName, first),
				Names:   []string{displayName, first},
			})
		} else {
			v.idNames[id] = displayName
		}
	}

	if shortnameOK && shortname != "" {
		if first, seen := v.shortnameNames[shortname]; seen {
			v.critical(Issue{
				Code:    ErrDuplicateShortname,
				Index:   index,
				Field:   "shortname",
				Message: fmt.Sprintf("duplicate shortname %q: %q and %q", shortname, displayName, first),
				Names:   []string{displayName, first},
			})
		} else {
			v.shortnameNames[shortname] = displayName
		}
		v.shortnames[shortname] = true
		v.checkImage(shortname, displayName)
	}

	// Content.
	if nameOK && name != "" && strings.TrimSpace(name) == "" {
		v.warn(Issue{Code: WarnEmptyName, Index: index, Field: "name", Message: fmt.Sprintf("%s: name is empty", prefix)})
	}
	if _, ok := record["description"]; !ok {
		v.warn(Issue{Code: WarnMissingDescription, Index: index, Field: "description", Message: fmt.Sprintf("%s: missing description field", prefix)})
	}

	if shortnameOK {
		return shortname
	}
	return ""
}

// checkID reports a type issue for a present id that is not an integral
// number and returns the id when it is usable. Integral values written in
// exponent or decimal form, such as 1e3 or 1001.0, are accepted.
func (v *validation) checkID(index int, prefix string, record map[string]any) (int64, bool) {
	if isMissing(record, "id") {
		return 0, false
	}
	num, ok := record["id"].(json.Number)
	if !ok {
		v.typeIssue(index, prefix, "id", "a number", record["id"])
		return 0, false
	}
	id, ok := integral(num)
	if !ok {
		v.critical(Issue{
			Code:    ErrInvalidFieldType,
			Index:   index,
			Field:   "id",
			Message: fmt.Sprintf("%s: id should be an integer, got %s", prefix, num),
		})
		return 0, false
	}
	return id, true
}

// integral returns num as an int64 when it has no fractional part and fits.
func integral(num json.Number) (int64, bool) {
	if id, err := num.Int64(); err == nil {
		return id, true
	}
	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func (v *validation) typeIssue(index int, prefix, field, want string, got any) {
	v.critical(Issue{
		Code:    ErrInvalidFieldType,
		Index:   index,
		Field:   field,
		Message: fmt.Sprintf("%s: %s should be %s, got %s", prefix, field, want, jsonType(got)),
	})
}

func (v *validation) checkImage(shortname, name string) {
	file := shortname + catalog.ImageExt
	if _, err := os.Stat(filepath.Join(v.imageDir, file)); err != nil {
		v.report.MissingImages = append(v.report.MissingImages, MissingImage{File: file, Name: name})
	}
}

func (v *validation) checkOrphans(pattern string) error {
	entries, err := os.ReadDir(v.imageDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading image directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := doublestar.Match(pattern, entry.Name())
		if err != nil {
			return fmt.Errorf("matching %q: %w", pattern, err)
		}
		if !ok {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if !v.shortnames[stem] {
			v.report.OrphanedImages = append(v.report.OrphanedImages, entry.Name())
		}
	}
	return nil
}

// isMissing treats absent keys, null values, empty strings and the number
// zero as missing.
func isMissing(record map[string]any, field string) bool {
	value, ok := record[field]
	if !ok || value == nil {
		return true
	}
	switch value := value.(type) {
	case string:
		return value == ""
	case json.Number:
		f, err := value.Float64()
		return err == nil && f == 0
	}
	return false
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
