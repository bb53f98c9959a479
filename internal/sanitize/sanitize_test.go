package sanitize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here is the data you asked for: {\"a\":{\"b\":2}} Let me know!", `{"a":{"b":2}}`},
		{"fence mid text", "Sure.\n```json\n{\"a\":1}\n```\nDone.", `{"a":1}`},
		{"no braces", "I could not find any importers.", `{}`},
		{"empty", "", `{}`},
		{"only opening brace", "broken { payload", "broken { payload"},
		{"sibling objects kept greedy", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSON(tt.raw))
		})
	}
}

func TestObject_ReturnsExactObject(t *testing.T) {
	inputs := []string{
		`{"importers":[{"importerName":"Acme"}],"count":1}`,
		"```json\n{\"importers\":[{\"importerName\":\"Acme\"}],\"count\":1}\n```",
		"Results follow.\n{\"importers\":[{\"importerName\":\"Acme\"}],\"count\":1}\nThanks.",
	}
	for _, in := range inputs {
		obj, err := Object(in)
		require.NoError(t, err)
		assert.Equal(t, float64(1), obj["count"])
		list, ok := obj["importers"].([]any)
		require.True(t, ok)
		assert.Len(t, list, 1)
	}
}

func TestObject_NoBracesIsEmpty(t *testing.T) {
	obj, err := Object("nothing to see here")
	require.NoError(t, err)
	assert.Empty(t, obj)
	assert.NotNil(t, obj)
}

func TestDecode_Malformed(t *testing.T) {
	var v map[string]any
	err := Decode(`{"a": 1,,}`, &v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))

	err = Decode(`{"a":1} {"b":2}`, &v)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestDecodeLenient(t *testing.T) {
	var out struct {
		Importers []struct {
			Name string `json:"importerName"`
		} `json:"importers"`
	}
	assert.True(t, DecodeLenient("```json\n{\"importers\":[{\"importerName\":\"Acme\"}]}\n```", &out))
	require.Len(t, out.Importers, 1)
	assert.Equal(t, "Acme", out.Importers[0].Name)

	var bad map[string]any
	assert.False(t, DecodeLenient("{not json}", &bad))
	assert.True(t, DecodeLenient("Sorry, no results.", &bad))
	assert.Empty(t, bad)
}
