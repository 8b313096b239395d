package compiler

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue"
)

// Fields names the raw source fields that map onto catalog fields.
type Fields struct {
	ID          string `json:"id" yaml:"id"`
	Shortname   string `json:"shortname" yaml:"shortname"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// DefaultFields returns the field names used by the game client's item
// bundles.
func DefaultFields() Fields {
	return Fields{
		ID:          "itemid",
		Shortname:   "shortname",
		Name:        "Name",
		Description: "Description",
	}
}

// Validate checks that every field name is set and distinct.
func (f Fields) Validate() error {
	seen := make(map[string]string)
	for _, pair := range [][2]string{
		{"id", f.ID},
		{"shortname", f.Shortname},
		{"name", f.Name},
		{"description", f.Description},
	} {
		if pair[1] == "" {
			return fmt.Errorf("source field for %s is empty", pair[0])
		}
		if other, ok := seen[pair[1]]; ok {
			return fmt.Errorf("source field %q mapped to both %s and %s", pair[1], other, pair[0])
		}
		seen[pair[1]] = pair[0]
	}
	return nil
}

// schemaDefinition is the CUE definition every raw file must satisfy.
const schemaDefinition = "#RawItem"

// SchemaSource renders the CUE schema for the given field names.
//
// The identifier must be a non-zero integer and the shortname and name must
// be non-empty strings. The description is optional and may be null. Other
// fields are allowed and ignored.
func SchemaSource(f Fields) string {
	return fmt.Sprintf(`%s: {
	%s: int & !=0
	%s: string & !=""
	%s: string & !=""
	%s?: string | null
	...
}
`, schemaDefinition,
		strconv.Quote(f.ID),
		strconv.Quote(f.Shortname),
		strconv.Quote(f.Name),
		strconv.Quote(f.Description))
}

// buildSchema compiles the schema for f and returns the #RawItem definition.
func buildSchema(ctx *cue.Context, f Fields) (cue.Value, error) {
	v := ctx.CompileString(SchemaSource(f), cue.Filename("raw_item.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling raw item schema: %w", err)
	}
	def := v.LookupPath(cue.ParsePath(schemaDefinition))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("looking up %s: %w", schemaDefinition, err)
	}
	return def, nil
}
