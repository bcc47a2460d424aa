package output

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-vacancy/internal/pipeline"
)

var rows = []pipeline.Row{
	{Venue: "会場", Checkin: "2026-10-14", HotelName: "ホテル|A", Price: 7000, ReserveURL: "https://example.com/a"},
	{Venue: "会場", Checkin: "2026-10-14", HotelName: "ホテルB", Price: 9000, ReserveURL: "https://example.com/b"},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff会場,チェックイン,ホテル名,料金,予約URL\n"))
	assert.Contains(t, out, "会場,2026-10-14,ホテル|A,7000,https://example.com/a\n")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "会場,結果\n", buf.String())
}

func TestSaveCSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "result.csv")
	require.NoError(t, SaveCSV(p, rows))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(b), "\n"))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, rows))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| 会場 | チェックイン | ホテル名 | 料金 | 予約URL |", lines[0])
	assert.Equal(t, "|:---|:---|:---|---:|:---|", lines[1])
	assert.Equal(t, `| 会場 | 2026-10-14 | ホテル\|A | 7000 | https://example.com/a |`, lines[2])
}
