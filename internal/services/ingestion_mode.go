package services

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"infinite-experiment/paddock/internal/config"
	"infinite-experiment/paddock/internal/models/dtos"
)

// IngestionMode decides which raw position records of a snapshot become
// insert candidates. It is chosen once at startup and never mixed.
type IngestionMode interface {
	// Name is "live" or "simulated".
	Name() string

	// SessionWindow is how far back an ended session still counts as current.
	SessionWindow() time.Duration

	// Select returns the candidates in insertion order. It must not modify raw.
	Select(raw []dtos.RawPosition, now time.Time) []dtos.RawPosition
}

// LiveMode keeps only the most recent record of every driver.
type LiveMode struct {
	Window time.Duration
}

func (LiveMode) Name() string { return config.IngestModeLive }

func (m LiveMode) SessionWindow() time.Duration { return m.Window }

func (LiveMode) Select(raw []dtos.RawPosition, _ time.Time) []dtos.RawPosition {
	latest := make(map[int]dtos.RawPosition, 32)
	for _, p := range raw {
		if cur, ok := latest[p.DriverNumber]; !ok || p.Date.After(cur.Date) {
			latest[p.DriverNumber] = p
		}
	}

	out := make([]dtos.RawPosition, 0, len(latest))
	for _, p := range latest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverNumber < out[j].DriverNumber })
	return out
}

// SimulatedMode replays the last TimestampCount distinct instants of a past
// session with fresh timestamps, to exercise the pipeline without a live
// session. Each replayed record is stamped a random 1..MaxJitter later than
// the previous one, starting from now.
type SimulatedMode struct {
	WindowDays     int
	TimestampCount int
	MaxJitter      time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedMode builds a simulated mode; seed makes the jitter reproducible.
func NewSimulatedMode(windowDays, timestampCount int, seed uint64) *SimulatedMode {
	return &SimulatedMode{
		WindowDays:     windowDays,
		TimestampCount: timestampCount,
		MaxJitter:      50 * time.Millisecond,
		rng:            rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (*SimulatedMode) Name() string { return config.IngestModeSimulated }

func (m *SimulatedMode) SessionWindow() time.Duration {
	return time.Duration(m.WindowDays) * 24 * time.Hour
}

func (m *SimulatedMode) Select(raw []dtos.RawPosition, now time.Time) []dtos.RawPosition {
	groups := make(map[int64][]dtos.RawPosition)
	for _, p := range raw {
		d := p.Date.UnixNano()
		groups[d] = append(groups[d], p)
	}

	instants := make([]int64, 0, len(groups))
	for d := range groups {
		instants = append(instants, d)
	}
	sort.Slice(instants, func(i, j int) bool { return instants[i] > instants[j] })
	if len(instants) > m.TimestampCount {
		instants = instants[:m.TimestampCount]
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]dtos.RawPosition, 0, len(raw))
	stamp := now
	// Oldest instant first, in upstream order.
	for i := len(instants) - 1; i >= 0; i-- {
		group := groups[instants[i]]
		sort.Slice(group, func(a, b int) bool { return group[a].DriverNumber < group[b].DriverNumber })

		for _, p := range group {
			stamp = stamp.Add(m.jitter())
			p.Date = stamp
			out = append(out, p)
		}
	}
	return out
}

// jitter returns a whole number of milliseconds in [1ms, MaxJitter].
func (m *SimulatedMode) jitter() time.Duration {
	maxMs := int64(m.MaxJitter / time.Millisecond)
	if maxMs < 1 {
		maxMs = 1
	}
	return time.Duration(1+m.rng.Int64N(maxMs)) * time.Millisecond
}

// ModeFromConfig builds the ingestion strategy selected by configuration.
func ModeFromConfig(cfg *config.Config) IngestionMode {
	if cfg.IngestMode == config.IngestModeSimulated {
		return NewSimulatedMode(cfg.SimWindowDays, cfg.SimTimestampCount, uint64(time.Now().UnixNano()))
	}
	return LiveMode{Window: cfg.LiveWindow}
}
