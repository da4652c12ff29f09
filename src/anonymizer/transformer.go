package anonymizer

import (
	"fmt"

	"github.com/goccy/go-json"
)

// transformRow rewrites one table row in place. line is the 1-based physical
// line used in warning messages.
func (e *Engine) transformRow(bindings ColumnBindings, row []string, line int64, stats *Stats) {
	for col, handlers := range bindings {
		if col >= len(row) {
			continue // ragged row, nothing in this cell
		}
		for _, h := range handlers {
			if h.spec.Path == nil {
				before := row[col]
				value, warning := h.Anonymize(before)
				if s, ok := value.(string); ok {
					row[col] = s
				}
				if row[col] != before {
					stats.Values++
				}
				e.recordWarning(stats, warning, line)
				continue
			}
			e.transformJSONCell(h, &row[col], line, stats)
		}
	}
}

// transformJSONCell parses a cell as JSON, rewrites the handler's matches
// and reserializes. A cell that does not parse is left untouched with one
// warning against the row.
func (e *Engine) transformJSONCell(h *FieldHandler, cell *string, line int64, stats *Stats) {
	var doc interface{}
	if err := json.Unmarshal([]byte(*cell), &doc); err != nil {
		e.recordWarning(stats, &Warning{
			Kind:      BAD_JSON_WARNING,
			FieldSpec: h.spec.Raw,
			Detail:    fmt.Sprintf("cannot parse JSON cell: %s", err),
		}, line)
		return
	}
	e.applyPath(h, doc, line, stats)
	bs, err := json.Marshal(doc)
	if err != nil {
		e.recordWarning(stats, &Warning{
			Kind:      BAD_JSON_WARNING,
			FieldSpec: h.spec.Raw,
			Detail:    fmt.Sprintf("cannot reserialize JSON cell: %s", err),
		}, line)
		return
	}
	*cell = string(bs)
}

// applyPath runs one handler's path over a parsed document and substitutes
// every match in place.
func (e *Engine) applyPath(h *FieldHandler, doc interface{}, line int64, stats *Stats) {
	for _, match := range h.spec.Path.Find(doc) {
		value, warning := h.Anonymize(match.Value)
		e.recordWarning(stats, warning, line)
		if value == nil {
			continue // null stays null, nothing to write back
		}
		if err := match.Update(doc, value); err != nil {
			e.recordWarning(stats, &Warning{
				Kind:      PATH_UPDATE_WARNING,
				FieldSpec: h.spec.Raw,
				Detail:    err.Error(),
			}, line)
			continue
		}
		switch value.(type) {
		case string, float64, bool:
			if value != match.Value {
				stats.Values++
			}
		}
	}
}
