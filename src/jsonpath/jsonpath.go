// Package jsonpath wraps the ojg JSONPath engine behind the small surface the
// transformation code needs: compile once, locate matches, update in place.
package jsonpath

import (
	"fmt"

	"github.com/ohler55/ojg/jp"
)

// Expression is a compiled JSONPath.
type Expression struct {
	raw  string
	expr jp.Expr
}

func Compile(path string) (*Expression, error) {
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path expression %q: %w", path, err)
	}
	return &Expression{raw: path, expr: expr}, nil
}

func (e *Expression) String() string {
	return e.raw
}

// Match is one location produced by evaluating an Expression against a
// document, with the value seen there at evaluation time.
type Match struct {
	loc   jp.Expr
	Value interface{}
}

// Path is the normalized path of this concrete match.
func (m Match) Path() string {
	return m.loc.String()
}

// Update writes a new value at this match's location inside doc.
func (m Match) Update(doc interface{}, value interface{}) error {
	if err := m.loc.Set(doc, value); err != nil {
		return fmt.Errorf("set %s: %w", m.loc, err)
	}
	return nil
}

// Find evaluates the expression and returns every match. The returned values
// are snapshots; later Updates do not alter them.
func (e *Expression) Find(doc interface{}) []Match {
	locs := e.expr.Locate(doc, 0)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{loc: loc, Value: loc.First(doc)})
	}
	return matches
}
