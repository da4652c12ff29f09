package anonymizer

// ColumnBindings maps a column index to the handlers that run on it, in
// configuration order. A cell with stacked handlers sees each handler's
// output flow into the next.
type ColumnBindings [][]*FieldHandler

// BindColumns matches handler specs against a header row by exact name. One
// spec may bind several duplicate columns and one column may stack several
// handlers. The second result lists the column names no header matched;
// those handlers simply do not run for this file.
func BindColumns(header []string, handlers []*FieldHandler) (ColumnBindings, []string) {
	bindings := make(ColumnBindings, len(header))
	var unmatched []string
	for _, h := range handlers {
		bound := false
		for i, name := range header {
			if name == h.spec.Column {
				bindings[i] = append(bindings[i], h)
				bound = true
			}
		}
		if !bound {
			unmatched = append(unmatched, h.spec.Column)
		}
	}
	return bindings, unmatched
}
