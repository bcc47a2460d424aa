package alias

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
ゼビオアリーナ仙台:
  middle: miyagi
  small: sendai
  detail: B
" 名取会場 ":
  lat: 38.17
  lng: 140.89
`

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	e, ok := tbl.Lookup("ゼビオアリーナ仙台 ")
	require.True(t, ok)
	assert.True(t, e.HasCodes())
	assert.Nil(t, e.Coordinate())
	assert.Equal(t, "B", e.Detail)

	e, ok = tbl.Lookup("名取会場")
	require.True(t, ok)
	assert.False(t, e.HasCodes())
	require.NotNil(t, e.Coordinate())
	assert.Equal(t, 38.17, e.Coordinate().Lat)

	_, ok = tbl.Lookup("不明")
	assert.False(t, ok)
}

func TestRead_Invalid(t *testing.T) {
	tests := map[string]string{
		"PartialCodes": "a:\n  middle: m\n",
		"PartialCoord": "a:\n  lat: 1\n",
		"OutOfRange":   "a:\n  lat: 100\n  lng: 1\n",
		"Nothing":      "a: {}\n",
		"NotYAML":      "a: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	tbl, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, tbl)

	_, err = Load("/nonexistent/alias.yaml")
	assert.Error(t, err)
}

func TestNilTable(t *testing.T) {
	var tbl Table
	_, ok := tbl.Lookup("x")
	assert.False(t, ok)
}
