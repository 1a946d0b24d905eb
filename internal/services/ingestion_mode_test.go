package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/models/dtos"
)

func TestLiveMode_KeepsLatestPerDriver(t *testing.T) {
	raw := []dtos.RawPosition{
		{DriverNumber: 44, Position: 3, Date: t0},
		{DriverNumber: 44, Position: 1, Date: t0.Add(5 * time.Minute)},
		{DriverNumber: 16, Position: 2, Date: t0.Add(time.Minute)},
	}

	got := LiveMode{Window: 6 * time.Hour}.Select(raw, time.Now())

	require.Len(t, got, 2)
	assert.Equal(t, 16, got[0].DriverNumber)
	assert.Equal(t, 44, got[1].DriverNumber)
	assert.Equal(t, 1, got[1].Position)
	assert.True(t, got[1].Date.Equal(t0.Add(5*time.Minute)))
}

func TestSimulatedMode_ReplaysLatestInstants(t *testing.T) {
	var raw []dtos.RawPosition
	for i := 0; i < 8; i++ {
		at := t0.Add(time.Duration(i) * 4 * time.Second)
		raw = append(raw,
			dtos.RawPosition{DriverNumber: 44, Position: 1 + i%2, Date: at},
			dtos.RawPosition{DriverNumber: 1, Position: 2 - i%2, Date: at},
		)
	}
	original := append([]dtos.RawPosition(nil), raw...)

	mode := NewSimulatedMode(7, 3, 42)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	got := mode.Select(raw, now)

	// Three instants of two drivers each.
	require.Len(t, got, 6)
	assert.Equal(t, original, raw, "input must not be modified")

	prev := now
	for _, p := range got {
		assert.True(t, p.Date.After(prev), "dates must strictly increase")
		gap := p.Date.Sub(prev)
		assert.GreaterOrEqual(t, gap, time.Millisecond)
		assert.LessOrEqual(t, gap, mode.MaxJitter)
		prev = p.Date
	}

	// Oldest replayed instant is index 5 of the feed: 44 in P2, 1 in P1.
	assert.Equal(t, 1, got[0].DriverNumber)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, 44, got[1].DriverNumber)
	assert.Equal(t, 2, got[1].Position)
}

func TestSimulatedMode_FewerInstantsThanCount(t *testing.T) {
	raw := []dtos.RawPosition{
		{DriverNumber: 44, Position: 1, Date: t0},
		{DriverNumber: 16, Position: 2, Date: t0},
	}

	got := NewSimulatedMode(7, 5, 1).Select(raw, time.Now())
	assert.Len(t, got, 2)
}

func TestSimulatedMode_SessionWindow(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, NewSimulatedMode(7, 5, 1).SessionWindow())
}

func TestModeFromConfig(t *testing.T) {
	cfg := config.New()

	cfg.IngestMode = config.IngestModeLive
	assert.Equal(t, config.IngestModeLive, ModeFromConfig(cfg).Name())
	assert.Equal(t, cfg.LiveWindow, ModeFromConfig(cfg).SessionWindow())

	cfg.IngestMode = config.IngestModeSimulated
	mode := ModeFromConfig(cfg)
	assert.Equal(t, config.IngestModeSimulated, mode.Name())
	assert.Equal(t, time.Duration(cfg.SimWindowDays)*24*time.Hour, mode.SessionWindow())
}
