package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-vacancy/internal/config"
	"venue-vacancy/internal/pipeline"
	"venue-vacancy/internal/vacancy"
)

func parsed(t *testing.T, args ...string) (*cobra.Command, flags) {
	t.Helper()
	cmd := &cobra.Command{Use: "vacancy"}
	var f flags
	bindFlags(cmd.Flags(), &f)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, f
}

func TestApplyFlags_OnlyChanged(t *testing.T) {
	cmd, f := parsed(t, "--mode", "radius", "--radius", "1.5", "--venue", "東京ドーム")
	cfg := config.Config{Mode: vacancy.ModeArea, RadiusKm: 3, Condition: "禁煙", ResultCSV: "result.csv", Workers: 2}
	require.NoError(t, applyFlags(cmd, &cfg, f))
	assert.Equal(t, vacancy.ModeRadius, cfg.Mode)
	assert.Equal(t, 1.5, cfg.RadiusKm)
	assert.Equal(t, "東京ドーム", cfg.Venues)
	assert.Equal(t, "禁煙", cfg.Condition)
	assert.Equal(t, "result.csv", cfg.ResultCSV)
	assert.Equal(t, 2, cfg.Workers)
}

func TestApplyFlags_BadMode(t *testing.T) {
	cmd, f := parsed(t, "--mode", "grid")
	cfg := config.Config{}
	assert.Error(t, applyFlags(cmd, &cfg, f))
}

func TestWriteResults_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	var out bytes.Buffer
	require.NoError(t, writeResults(&out, path, nil))
	assert.Contains(t, out.String(), "空室は見つかりませんでした")
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "会場,結果\n", string(b))
}

func TestWriteResults_Rows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	var out bytes.Buffer
	rows := []pipeline.Row{{Venue: "東京ドーム", Checkin: "2026-12-24", HotelName: "ホテルA", Price: 8000, ReserveURL: "https://example.com/a"}}
	require.NoError(t, writeResults(&out, path, rows))
	assert.Contains(t, out.String(), "ホテルA")
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestRun_RequiresVenues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")
	err := run(t.Context(), config.Config{AppID: "x"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "no venues")
	err = run(t.Context(), config.Config{Venues: "東京ドーム"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "RAKUTEN_APP_ID")
}
