//go:build unit

package jsonpath_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataveil/dataveil/src/jsonpath"
)

func parseJSON(t *testing.T, s string) interface{} {
	t.Helper()
	var doc interface{}
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func TestCompile(t *testing.T) {
	expr, err := jsonpath.Compile("users[*].email")
	require.NoError(t, err)
	assert.Equal(t, "users[*].email", expr.String())

	_, err = jsonpath.Compile("users[")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid path expression")
}

func TestFindReturnsEveryMatch(t *testing.T) {
	doc := parseJSON(t, `{"users":[{"email":"a@x.com"},{"email":"b@y.com"},{"name":"no email"}]}`)
	expr, err := jsonpath.Compile("users[*].email")
	require.NoError(t, err)

	matches := expr.Find(doc)
	require.Len(t, matches, 2)

	values := []interface{}{matches[0].Value, matches[1].Value}
	assert.ElementsMatch(t, []interface{}{"a@x.com", "b@y.com"}, values)
	for _, m := range matches {
		t.Logf("OUT: %s = %v", m.Path(), m.Value)
		assert.Contains(t, m.Path(), "email")
	}
}

func TestFindOnMissingPath(t *testing.T) {
	doc := parseJSON(t, `{"users":[]}`)
	expr, err := jsonpath.Compile("users[*].email")
	require.NoError(t, err)
	assert.Empty(t, expr.Find(doc))
}

func TestUpdateWritesInPlace(t *testing.T) {
	doc := parseJSON(t, `{"user":{"email":"a@x.com","age":30}}`)
	expr, err := jsonpath.Compile("user.email")
	require.NoError(t, err)

	matches := expr.Find(doc)
	require.Len(t, matches, 1)
	require.NoError(t, matches[0].Update(doc, "z@w.com"))

	user := doc.(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, "z@w.com", user["email"])
	assert.Equal(t, float64(30), user["age"])

	// Matches hold the value seen at evaluation time.
	assert.Equal(t, "a@x.com", matches[0].Value)
}

func TestUpdateArrayElement(t *testing.T) {
	doc := parseJSON(t, `{"ips":["10.0.0.1","10.0.0.2"]}`)
	expr, err := jsonpath.Compile("ips[1]")
	require.NoError(t, err)

	matches := expr.Find(doc)
	require.Len(t, matches, 1)
	require.NoError(t, matches[0].Update(doc, "198.51.100.7"))

	ips := doc.(map[string]interface{})["ips"].([]interface{})
	assert.Equal(t, "10.0.0.1", ips[0])
	assert.Equal(t, "198.51.100.7", ips[1])
}
