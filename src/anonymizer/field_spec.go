package anonymizer

import (
	"fmt"
	"strings"

	"github.com/dataveil/dataveil/src/jsonpath"
)

// Mode selects how field specs address values in a data file.
type Mode int

const (
	// TableMode: files carry a header row, specs name a column and
	// optionally a path into JSON stored inside the column's cells.
	TableMode Mode = iota
	// DocumentMode: the whole file is one JSON document and specs are bare
	// path expressions.
	DocumentMode
)

// FieldSpec is one compiled field argument.
type FieldSpec struct {
	Raw    string
	Column string               // table mode only
	Path   *jsonpath.Expression // optional in table mode, mandatory in document mode
}

// ParseFieldSpec compiles a raw field spec for the given mode. In table mode
// the spec is "column" or "column.pathexpr", split at the first dot, so a
// column holding JSON is addressed as if the path continued into the cell. A
// malformed spec is a configuration error, not a data error.
func ParseFieldSpec(mode Mode, raw string) (*FieldSpec, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty field spec")
	}
	spec := &FieldSpec{Raw: raw}
	if mode == DocumentMode {
		expr, err := jsonpath.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("field spec %q: %w", raw, err)
		}
		spec.Path = expr
		return spec, nil
	}

	column, pathExpr, hasPath := strings.Cut(raw, ".")
	if column == "" {
		return nil, fmt.Errorf("field spec %q: empty column name", raw)
	}
	spec.Column = column
	if hasPath {
		if pathExpr == "" {
			return nil, fmt.Errorf("field spec %q: empty path expression", raw)
		}
		expr, err := jsonpath.Compile(pathExpr)
		if err != nil {
			return nil, fmt.Errorf("field spec %q: %w", raw, err)
		}
		spec.Path = expr
	}
	return spec, nil
}
