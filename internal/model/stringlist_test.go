package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want StringList
	}{
		{"nil", nil, nil},
		{"postgres array", []byte(`{cat,blue}`), StringList{"cat", "blue"}},
		{"json array text", []byte(`["cat","blue"]`), StringList{"cat", "blue"}},
		{"comma separated", []byte(`cat, blue`), StringList{"cat", "blue"}},
		{"plain string", "sunset", StringList{"sunset"}},
		{"empty", []byte(``), StringList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l StringList
			require.NoError(t, l.Scan(tt.src))
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestStringListScanUnsupportedType(t *testing.T) {
	var l StringList
	assert.Error(t, l.Scan(42))
}

// A JSON-encoded string holding an array must be treated identically to a
// native array.
func TestStringListUnmarshalRepresentations(t *testing.T) {
	var native, encoded StringList

	require.NoError(t, json.Unmarshal([]byte(`["cat","blue"]`), &native))
	require.NoError(t, json.Unmarshal([]byte(`"[\"cat\",\"blue\"]"`), &encoded))

	assert.Equal(t, native, encoded)
}

func TestStringListValueRoundTrip(t *testing.T) {
	l := StringList{"cat", "blue"}

	v, err := l.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, l, scanned)
}
