package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/providers"
)

func ended(t time.Time) *time.Time { return &t }

func TestResolveCurrentSession_PicksRaceOverPractice(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	sessions := []dtos.Session{
		{SessionKey: 100, SessionType: "Race", DateStart: now.Add(-3 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
		{SessionKey: 200, SessionType: "Practice", DateStart: now.Add(-2 * time.Hour), DateEnd: ended(now.Add(-10 * time.Minute))},
	}

	key, ok := ResolveCurrentSession(sessions, now, 6*time.Hour)
	require.True(t, ok)
	assert.Equal(t, 100, key)
}

func TestResolveCurrentSession_Ranking(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sessions []dtos.Session
		want     int
		wantOK   bool
	}{
		{
			name: "running session beats ended one",
			sessions: []dtos.Session{
				{SessionKey: 300, SessionType: "Qualifying", DateStart: now.Add(-2 * time.Hour), DateEnd: ended(now.Add(-5 * time.Minute))},
				{SessionKey: 100, SessionType: "Race", DateStart: now.Add(-time.Hour)},
			},
			want: 100, wantOK: true,
		},
		{
			name: "latest end wins",
			sessions: []dtos.Session{
				{SessionKey: 300, SessionType: "Qualifying", DateStart: now.Add(-5 * time.Hour), DateEnd: ended(now.Add(-4 * time.Hour))},
				{SessionKey: 200, SessionType: "Race", DateStart: now.Add(-3 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
			},
			want: 200, wantOK: true,
		},
		{
			name: "equal end falls back to higher key",
			sessions: []dtos.Session{
				{SessionKey: 200, SessionType: "Race", DateStart: now.Add(-3 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
				{SessionKey: 201, SessionType: "Race", DateStart: now.Add(-3 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
			},
			want: 201, wantOK: true,
		},
		{
			name: "ended outside window",
			sessions: []dtos.Session{
				{SessionKey: 200, SessionType: "Race", DateStart: now.Add(-9 * time.Hour), DateEnd: ended(now.Add(-7 * time.Hour))},
			},
			wantOK: false,
		},
		{
			name: "not started yet",
			sessions: []dtos.Session{
				{SessionKey: 200, SessionType: "Race", DateStart: now.Add(time.Hour)},
			},
			wantOK: false,
		},
		{
			name: "only practice",
			sessions: []dtos.Session{
				{SessionKey: 200, SessionType: "Practice", DateStart: now.Add(-time.Hour)},
			},
			wantOK: false,
		},
		{
			name:   "empty catalog",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := ResolveCurrentSession(tt.sessions, now, 6*time.Hour)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, key)
			}
		})
	}
}

func TestResolveCurrentSession_OrderIndependent(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	sessions := []dtos.Session{
		{SessionKey: 1, SessionType: "Race", DateStart: now.Add(-4 * time.Hour), DateEnd: ended(now.Add(-2 * time.Hour))},
		{SessionKey: 2, SessionType: "Qualifying", DateStart: now.Add(-3 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
		{SessionKey: 3, SessionType: "Race", DateStart: now.Add(-2 * time.Hour), DateEnd: ended(now.Add(-time.Hour))},
	}
	reversed := []dtos.Session{sessions[2], sessions[1], sessions[0]}

	a, _ := ResolveCurrentSession(sessions, now, 6*time.Hour)
	b, _ := ResolveCurrentSession(reversed, now, 6*time.Hour)
	assert.Equal(t, 3, a)
	assert.Equal(t, a, b)
}

func newTestSessionService(p *fakeProvider, now time.Time) *SessionService {
	return NewSessionService(p, common.NewCacheService(time.Minute, time.Minute), SessionServiceOptions{
		Window:          6 * time.Hour,
		SessionCacheTTL: time.Minute,
		DriverCacheTTL:  time.Minute,
		Now:             func() time.Time { return now },
	})
}

func TestSessionService_CachesCurrentSession(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	p := &fakeProvider{sessions: []dtos.Session{
		{SessionKey: 9000, SessionType: "Race", DateStart: now.Add(-time.Hour)},
	}}
	svc := newTestSessionService(p, now)

	for i := 0; i < 3; i++ {
		key, err := svc.CurrentSessionKey(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 9000, key)
	}
	assert.Equal(t, 1, p.sessionCalls)
}

func TestSessionService_NoActiveSessionIsCached(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	p := &fakeProvider{}
	svc := newTestSessionService(p, now)

	_, err := svc.CurrentSessionKey(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = svc.CurrentSessionKey(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Equal(t, 1, p.sessionCalls)
}

func TestSessionService_UpstreamErrorNotCached(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	p := &fakeProvider{sessionsErr: &providers.ProviderError{Code: "NETWORK_ERROR", Message: "down"}}
	svc := newTestSessionService(p, now)

	_, err := svc.CurrentSessionKey(context.Background())
	assert.True(t, errors.Is(err, ErrUpstreamUnavailable))
	assert.False(t, errors.Is(err, ErrNoActiveSession))

	p.sessionsErr = nil
	p.sessions = []dtos.Session{{SessionKey: 9000, SessionType: "Race", DateStart: now.Add(-time.Hour)}}
	key, err := svc.CurrentSessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9000, key)
	assert.Equal(t, 2, p.sessionCalls)
}

func TestSessionService_DriversCachedPerSession(t *testing.T) {
	p := &fakeProvider{drivers: testDrivers}
	svc := newTestSessionService(p, time.Now())

	first, err := svc.Drivers(context.Background(), 9000)
	require.NoError(t, err)
	second, err := svc.Drivers(context.Background(), 9000)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, len(testDrivers))
	assert.Equal(t, 1, p.driverCalls)
}

func TestSessionService_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	now := time.Date(2024, 3, 2, 18, 0, 0, 0, time.UTC)
	p := &fakeProvider{
		sessions: []dtos.Session{{SessionKey: 9000, SessionType: "Race", DateStart: now.Add(-time.Hour)}},
		drivers:  testDrivers,
	}
	svc := newTestSessionService(p, now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key, err := svc.CurrentSessionKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9000, key)

	drivers, err := svc.Drivers(ctx, 9000)
	require.NoError(t, err)
	assert.Len(t, drivers, len(testDrivers))

	// The detached load populated the cache for later callers.
	key, err = svc.CurrentSessionKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9000, key)
	assert.Equal(t, 1, p.sessionCalls)
}
