package jsonx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"prose before", `Sure! Here you go: {"a":1} hope it helps`, `{"a":1}`},
		{"code fence", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"brace in string", `{"reply":"dùng dấu } nhé","x":1}`, `{"reply":"dùng dấu } nhé","x":1}`},
		{"escaped quote", `{"r":"say \"}\" ok"}`, `{"r":"say \"}\" ok"}`},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`},
		{"unbalanced then good", `{ broken {"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractNone(t *testing.T) {
	for _, raw := range []string{"", "no json here", "{ never closed", "}{"} {
		_, err := Extract(raw)
		assert.ErrorIs(t, err, ErrNoJSON, raw)
	}
}

type answer struct {
	Action  string `json:"action" validate:"required,oneof=CHAT SEARCH"`
	Keyword string `json:"keyword"`
}

func TestDecode(t *testing.T) {
	var a answer
	require.NoError(t, Decode("ok: {\"action\":\"SEARCH\",\"keyword\":\"fuel\"}", &a))
	assert.Equal(t, "SEARCH", a.Action)
	assert.Equal(t, "fuel", a.Keyword)
}

func TestDecodeValidation(t *testing.T) {
	var a answer
	err := Decode(`{"action":"DANCE"}`, &a)

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestDecodeSyntax(t *testing.T) {
	var a answer
	err := Decode(`{"action": CHAT}`, &a)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
}

func TestDecodeMap(t *testing.T) {
	m := map[string]interface{}{}
	require.NoError(t, Decode(`x {"k":"v"}`, &m))
	assert.Equal(t, "v", m["k"])
}
