package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalData(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"nil", nil, `{}`},
		{"empty", map[string]any{}, `{}`},
		{"sorted keys", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"no html escape", map[string]any{"t": "<a&b>"}, `{"t":"<a&b>"}`},
		{"nested", map[string]any{"o": map[string]any{"z": true, "y": nil}, "l": []any{"a", json.Number("2")}}, `{"l":["a",2],"o":{"y":null,"z":true}}`},
		{"integral number", map[string]any{"n": json.Number("1.0")}, `{"n":1}`},
		{"fraction", map[string]any{"n": json.Number("1.25")}, `{"n":1.25}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalData(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestCanonicalData_NFC(t *testing.T) {
	composed := map[string]any{"title": "caf\u00e9"}
	decomposed := map[string]any{"title": "cafe\u0301"}

	assert.True(t, SameData(composed, decomposed))
}

func TestCanonicalData_UTF16KeyOrder(t *testing.T) {
	// U+1F600 sorts before U+FF61 in UTF-16 but after it in UTF-8.
	data := map[string]any{"\U0001F600": 1, "｡": 2}
	got, err := CanonicalData(data)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"｡\":2}", string(got))
}

func TestCanonicalData_Unsupported(t *testing.T) {
	_, err := CanonicalData(map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
	assert.False(t, SameData(map[string]any{"ch": make(chan int)}, map[string]any{}))
}
