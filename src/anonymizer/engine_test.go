//go:build unit

package anonymizer

import (
	"io"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/dataveil/dataveil/test/utils"
)

// sliceReader and sliceWriter stand in for the datafile implementations so
// engine tests stay in memory.
type sliceReader struct {
	header []string
	rows   [][]string
	pos    int
	bytes  int64
}

func (r *sliceReader) Header() ([]string, error) {
	if r.header == nil {
		return nil, io.EOF
	}
	return r.header, nil
}

func (r *sliceReader) ReadRow() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	// Copy, the engine rewrites rows in place.
	row := append([]string(nil), r.rows[r.pos]...)
	r.pos++
	r.bytes += int64(len(strings.Join(row, ",")) + 1)
	return row, nil
}

func (r *sliceReader) GetBytesRead() int64 { return r.bytes }

func (r *sliceReader) Close() {}

type sliceWriter struct {
	header        []string
	headerWritten bool
	rows          [][]string
}

func (w *sliceWriter) WriteHeader(record []string) error {
	w.header = append([]string(nil), record...)
	w.headerWritten = true
	return nil
}

func (w *sliceWriter) WriteRow(record []string) error {
	w.rows = append(w.rows, append([]string(nil), record...))
	return nil
}

func (w *sliceWriter) Close() error { return nil }

func parseJSON(t *testing.T, s string) interface{} {
	t.Helper()
	var doc interface{}
	testutils.FatalIfError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func TestAnonymizeTable(t *testing.T) {
	engine := newTestEngine(t, &Config{
		NameFields:  []string{"name"},
		EmailFields: []string{"email"},
	})
	reader := &sliceReader{
		header: []string{"id", "name", "email", "city"},
		rows: [][]string{
			{"1", "Alice Smith", "Alice@Corp.Example", "london"},
			{"2", "Bob Jones", "bob@corp.example", "paris"},
			{"3", "Alice Smith", "alice@corp.example", "london"},
		},
	}
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(reader, writer, nil)
	require.NoError(t, err)
	for i, row := range writer.rows {
		t.Logf("\nIN : %v\nOUT: %v", reader.rows[i], row)
	}

	assert.Equal(t, []string{"id", "name", "email", "city"}, writer.header)
	require.Len(t, writer.rows, 3)
	assert.Equal(t, int64(3), stats.Rows)
	assert.Equal(t, int64(6), stats.Values)
	assert.Empty(t, stats.Warnings)

	// Untouched columns survive verbatim.
	assert.Equal(t, "1", writer.rows[0][0])
	assert.Equal(t, "london", writer.rows[0][3])

	// The same name maps to the same substitute, different names differ.
	assert.NotEqual(t, "Alice Smith", writer.rows[0][1])
	assert.Equal(t, writer.rows[0][1], writer.rows[2][1])
	assert.NotEqual(t, writer.rows[0][1], writer.rows[1][1])

	// Addresses are case-insensitive and keep their domain grouping.
	assert.Equal(t, writer.rows[0][2], writer.rows[2][2])
	domain := func(addr string) string { return strings.Split(addr, "@")[1] }
	assert.Equal(t, domain(writer.rows[0][2]), domain(writer.rows[1][2]))

	sizes := engine.CacheSizes()
	assert.Equal(t, 2, sizes[NAME_KIND])
	assert.Equal(t, 2, sizes[EMAIL_KIND])
}

func TestAnonymizeTableSharesCacheAcrossFiles(t *testing.T) {
	engine := newTestEngine(t, &Config{NameFields: []string{"name"}})

	outs := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		writer := &sliceWriter{}
		_, err := engine.AnonymizeTable(&sliceReader{
			header: []string{"name"},
			rows:   [][]string{{"Alice Smith"}},
		}, writer, nil)
		require.NoError(t, err)
		outs = append(outs, writer.rows[0][0])
	}
	assert.Equal(t, outs[0], outs[1], "one value must keep one substitute across files")
}

func TestAnonymizeTableEmptyFile(t *testing.T) {
	engine := newTestEngine(t, &Config{NameFields: []string{"name"}})
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(&sliceReader{}, writer, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Rows)
	assert.Empty(t, stats.Warnings)
	assert.False(t, writer.headerWritten, "an empty input must produce an empty output")
}

func TestAnonymizeTableUnmatchedColumns(t *testing.T) {
	engine := newTestEngine(t, &Config{
		NameFields:  []string{"name"},
		EmailFields: []string{"phone"},
	})
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"name"},
		rows:   [][]string{{"Alice Smith"}},
	}, writer, nil)
	require.NoError(t, err)

	require.Len(t, stats.Warnings, 1)
	warning := stats.Warnings[0]
	assert.Equal(t, UNMATCHED_COLUMNS_WARNING, warning.Kind)
	assert.Contains(t, warning.Detail, "phone")
	assert.Equal(t, int64(0), warning.Line)

	// The matched handler still ran.
	assert.NotEqual(t, "Alice Smith", writer.rows[0][0])
}

func TestAnonymizeTableRaggedRows(t *testing.T) {
	engine := newTestEngine(t, &Config{NameFields: []string{"c"}})
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"a", "b", "c"},
		rows: [][]string{
			{"only"},
			{"x", "y", "Alice Smith", "extra"},
		},
	}, writer, nil)
	require.NoError(t, err)

	require.Len(t, writer.rows, 2)
	assert.Equal(t, []string{"only"}, writer.rows[0])
	assert.Len(t, writer.rows[1], 4)
	assert.NotEqual(t, "Alice Smith", writer.rows[1][2])
	assert.Equal(t, "extra", writer.rows[1][3])
	assert.Equal(t, int64(1), stats.Values)
	assert.Empty(t, stats.Warnings)
}

func TestAnonymizeTableJSONCells(t *testing.T) {
	engine := newTestEngine(t, &Config{NameFields: []string{"payload.user.name"}})
	writer := &sliceWriter{}

	cell := `{"user":{"name":"Alice","age":30}}`
	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"payload"},
		rows:   [][]string{{cell}, {cell}},
	}, writer, nil)
	require.NoError(t, err)
	t.Logf("\nIN : %s\nOUT: %s", cell, writer.rows[0][0])

	out := parseJSON(t, writer.rows[0][0]).(map[string]interface{})
	user := out["user"].(map[string]interface{})
	assert.NotEqual(t, "Alice", user["name"])
	assert.True(t, strings.HasPrefix(user["name"].(string), "Person "))
	assert.Equal(t, float64(30), user["age"])

	// Equal cells reserialize identically thanks to the shared cache.
	assert.Equal(t, writer.rows[0][0], writer.rows[1][0])
	assert.Equal(t, int64(2), stats.Values)
}

func TestAnonymizeTableJSONCellIPLeaf(t *testing.T) {
	// A spec with a single dot addresses a top-level key inside the cell. The
	// column is everything before the first dot, never the whole spec.
	engine := newTestEngine(t, &Config{IPFields: []string{"col.ip"}})
	writer := &sliceWriter{}

	cell := `{"ip":"10.1.2.3","port":8080}`
	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"col"},
		rows:   [][]string{{cell}},
	}, writer, nil)
	require.NoError(t, err)
	t.Logf("\nIN : %s\nOUT: %s", cell, writer.rows[0][0])

	assert.Empty(t, stats.Warnings, "the handler must bind to column %q", "col")
	assert.Equal(t, int64(1), stats.Values)

	out := parseJSON(t, writer.rows[0][0]).(map[string]interface{})
	ip, ok := out["ip"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "10.1.2.3", ip)
	assert.True(t, strings.HasPrefix(ip, "198.51."), "got %q", ip)
	assert.True(t, strings.HasSuffix(ip, ".3"), "the host octet survives, got %q", ip)
	assert.Equal(t, float64(8080), out["port"])
}

func TestAnonymizeTableBadJSONCell(t *testing.T) {
	engine := newTestEngine(t, &Config{NameFields: []string{"payload.user.name"}})
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"payload"},
		rows: [][]string{
			{`{"user":{"name":"Alice"}}`},
			{`{not json`},
		},
	}, writer, nil)
	require.NoError(t, err)

	require.Len(t, stats.Warnings, 1)
	warning := stats.Warnings[0]
	assert.Equal(t, BAD_JSON_WARNING, warning.Kind)
	assert.Equal(t, "payload.user.name", warning.FieldSpec)
	assert.Equal(t, int64(3), warning.Line, "the header is line 1, the bad row is line 3")
	assert.Equal(t, `{not json`, writer.rows[1][0], "an unparseable cell stays verbatim")
}

func TestAnonymizeTableWarningCarriesLine(t *testing.T) {
	engine := newTestEngine(t, &Config{CoordinateFields: []string{"lat"}})
	writer := &sliceWriter{}

	stats, err := engine.AnonymizeTable(&sliceReader{
		header: []string{"lat"},
		rows:   [][]string{{"somewhere"}, {"somewhere"}},
	}, writer, nil)
	require.NoError(t, err)

	require.Len(t, stats.Warnings, 1, "a repeated bad value warns once")
	warning := stats.Warnings[0]
	assert.Equal(t, BAD_COORDINATE_WARNING, warning.Kind)
	assert.Equal(t, int64(2), warning.Line)
	assert.Equal(t, "somewhere", writer.rows[0][0])
	assert.Equal(t, "somewhere", writer.rows[1][0])
	assert.Equal(t, int64(0), stats.Values)
}

func TestAnonymizeDocument(t *testing.T) {
	engine := newTestEngine(t, &Config{
		Mode:        DocumentMode,
		NameFields:  []string{"users[*].name"},
		EmailFields: []string{"users[*].email"},
	})
	doc := parseJSON(t, `{
		"users": [
			{"name": "Alice", "email": "alice@corp.example"},
			{"name": "Bob", "email": "bob@other.example"}
		],
		"note": "keep"
	}`)

	out, stats := engine.AnonymizeDocument(doc)
	bs, _ := json.Marshal(out)
	t.Logf("\nOUT: %s", bs)

	root := out.(map[string]interface{})
	users := root["users"].([]interface{})
	first := users[0].(map[string]interface{})
	second := users[1].(map[string]interface{})

	assert.Equal(t, "keep", root["note"])
	assert.NotEqual(t, "Alice", first["name"])
	assert.NotEqual(t, "Bob", second["name"])
	assert.NotEqual(t, first["name"], second["name"])

	domain := func(v interface{}) string { return strings.Split(v.(string), "@")[1] }
	assert.NotEqual(t, domain(first["email"]), domain(second["email"]),
		"distinct original domains must stay distinct")

	assert.Equal(t, int64(4), stats.Values)
	assert.Empty(t, stats.Warnings)
}

func TestAnonymizeDocumentAppliesHandlersInOrder(t *testing.T) {
	// Both handlers target the same leaf. The name handler runs first, the
	// email handler then sees the substituted name and rewrites it again.
	engine := newTestEngine(t, &Config{
		Mode:        DocumentMode,
		NameFields:  []string{"contact"},
		EmailFields: []string{"contact"},
	})
	doc := parseJSON(t, `{"contact": "Alice Smith"}`)

	out, stats := engine.AnonymizeDocument(doc)
	contact := out.(map[string]interface{})["contact"].(string)
	t.Logf("\nIN : Alice Smith\nOUT: %s", contact)

	assert.True(t, strings.HasSuffix(contact, "@"+FALLBACK_EMAIL_DOMAIN), "got %q", contact)
	assert.Equal(t, int64(2), stats.Values)
}

func TestAnonymizeDocumentLeavesNullsAlone(t *testing.T) {
	engine := newTestEngine(t, &Config{Mode: DocumentMode, NameFields: []string{"contact"}})
	doc := parseJSON(t, `{"contact": null}`)

	out, stats := engine.AnonymizeDocument(doc)
	assert.Nil(t, out.(map[string]interface{})["contact"])
	assert.Equal(t, int64(0), stats.Values)
	assert.Empty(t, stats.Warnings)
}

func TestAnonymizeDocumentWarnsOnCompositeMatch(t *testing.T) {
	engine := newTestEngine(t, &Config{Mode: DocumentMode, NameFields: []string{"meta"}})
	doc := parseJSON(t, `{"meta": {"x": 1}}`)

	_, stats := engine.AnonymizeDocument(doc)
	require.NotEmpty(t, stats.Warnings)
	assert.Equal(t, UNSUPPORTED_VALUE_WARNING, stats.Warnings[0].Kind)
	assert.Equal(t, int64(0), stats.Values)
}

func TestAnonymizeDocumentNumbersStayNumbers(t *testing.T) {
	engine := newTestEngine(t, &Config{Mode: DocumentMode, CoordinateFields: []string{"pos.lat", "pos.lon"}})
	doc := parseJSON(t, `{"pos": {"lat": 51.5074, "lon": -0.1278}}`)

	out, stats := engine.AnonymizeDocument(doc)
	pos := out.(map[string]interface{})["pos"].(map[string]interface{})

	lat, ok := pos["lat"].(float64)
	require.True(t, ok, "lat must stay a JSON number, got %T", pos["lat"])
	lon, ok := pos["lon"].(float64)
	require.True(t, ok, "lon must stay a JSON number, got %T", pos["lon"])

	// 0.001 of slack on top of the jitter bound absorbs the three-decimal
	// rounding of the substitute.
	assert.InDelta(t, 51.5074, lat, 0.501)
	assert.InDelta(t, -0.1278, lon, 0.501)
	assert.Equal(t, int64(2), stats.Values)
}
