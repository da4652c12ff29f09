package anonymizer

import "fmt"

// WarningKind classifies the non-fatal problems a run can hit. Warnings never
// stop processing; the affected value is carried through unchanged.
type WarningKind string

const (
	BAD_IP_WARNING            WarningKind = "bad-ip"
	BAD_COORDINATE_WARNING    WarningKind = "bad-coordinate"
	BAD_JSON_WARNING          WarningKind = "bad-json"
	UNSUPPORTED_VALUE_WARNING WarningKind = "unsupported-value"
	UNMATCHED_COLUMNS_WARNING WarningKind = "unmatched-columns"
	PATH_UPDATE_WARNING       WarningKind = "path-update"
)

// Warning describes one value or spec that could not be fully processed.
// Line is the 1-based physical line in table mode (the header is line 1),
// zero when there is no line to point at.
type Warning struct {
	Kind      WarningKind `json:"kind"`
	FieldSpec string      `json:"fieldSpec,omitempty"`
	Line      int64       `json:"line,omitempty"`
	Detail    string      `json:"detail"`
}

func (w *Warning) String() string {
	switch {
	case w.Line > 0 && w.FieldSpec != "":
		return fmt.Sprintf("field %q, line %d: %s", w.FieldSpec, w.Line, w.Detail)
	case w.FieldSpec != "":
		return fmt.Sprintf("field %q: %s", w.FieldSpec, w.Detail)
	default:
		return w.Detail
	}
}
