package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"infinite-experiment/paddock/internal/common"
	"infinite-experiment/paddock/internal/constants"
	"infinite-experiment/paddock/internal/metrics"
	"infinite-experiment/paddock/internal/models/dtos"
	"infinite-experiment/paddock/internal/providers"
)

// ResolveCurrentSession picks the session the dashboard should follow: a Race
// or Qualifying session that has started and either is still running or
// ended less than window ago. Running sessions win over ended ones, then the
// latest end wins, then the highest session key.
func ResolveCurrentSession(sessions []dtos.Session, now time.Time, window time.Duration) (int, bool) {
	cutoff := now.Add(-window)

	var best *dtos.Session
	for i := range sessions {
		s := &sessions[i]
		if !isTrackedSessionType(s.SessionType) {
			continue
		}
		if !s.DateStart.IsZero() && s.DateStart.After(now) {
			continue
		}
		if s.DateEnd != nil && !s.DateEnd.After(cutoff) {
			continue
		}
		if best == nil || rankedAbove(s, best) {
			best = s
		}
	}

	if best == nil {
		return 0, false
	}
	return best.SessionKey, true
}

func isTrackedSessionType(t string) bool {
	switch constants.SessionType(t) {
	case constants.SessionTypeRace, constants.SessionTypeQualifying:
		return true
	}
	return false
}

func rankedAbove(a, b *dtos.Session) bool {
	switch {
	case a.DateEnd == nil && b.DateEnd != nil:
		return true
	case a.DateEnd != nil && b.DateEnd == nil:
		return false
	case a.DateEnd != nil && !a.DateEnd.Equal(*b.DateEnd):
		return a.DateEnd.After(*b.DateEnd)
	}
	return a.SessionKey > b.SessionKey
}

// SessionSource yields the key of the session currently being followed.
type SessionSource interface {
	CurrentSessionKey(ctx context.Context) (int, error)
}

// DriverSource yields the participants of a session.
type DriverSource interface {
	Drivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error)
}

// SessionService resolves the current session and caches the answer, so
// that dashboard polling does not turn into one catalog fetch per request.
type SessionService struct {
	provider  providers.TelemetryProvider
	cache     common.CacheInterface
	metrics   *metrics.MetricsRegistry
	window    time.Duration
	ttl       time.Duration
	driverTTL time.Duration
	timeout   time.Duration
	now       func() time.Time
	group     singleflight.Group
}

// SessionServiceOptions configures a SessionService.
type SessionServiceOptions struct {
	Window          time.Duration
	SessionCacheTTL time.Duration
	DriverCacheTTL  time.Duration
	// LoadTimeout bounds one shared upstream lookup. Defaults to 10s.
	LoadTimeout time.Duration
	Metrics     *metrics.MetricsRegistry
	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewSessionService(provider providers.TelemetryProvider, cache common.CacheInterface, opts SessionServiceOptions) *SessionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 10 * time.Second
	}
	return &SessionService{
		provider:  provider,
		cache:     cache,
		metrics:   opts.Metrics,
		window:    opts.Window,
		ttl:       opts.SessionCacheTTL,
		driverTTL: opts.DriverCacheTTL,
		timeout:   opts.LoadTimeout,
		now:       opts.Now,
	}
}

// CurrentSessionKey returns the resolved session key or ErrNoActiveSession.
// A "no session" answer is cached like any other.
func (s *SessionService) CurrentSessionKey(ctx context.Context) (int, error) {
	key := string(constants.CachePrefixCurrentSession) + s.window.String()

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := s.sharedContext(ctx)
		defer cancel()
		return common.GetOrLoad(loadCtx, s.cache, s.metrics, "current_session", key, s.ttl, s.resolve)
	})
	if err != nil {
		return 0, err
	}

	sessionKey := v.(int)
	if sessionKey == 0 {
		return 0, ErrNoActiveSession
	}
	return sessionKey, nil
}

// sharedContext detaches a singleflight load from the caller that started it.
// Other callers wait on the same result, so one client going away must not
// fail them all.
func (s *SessionService) sharedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}

func (s *SessionService) resolve(ctx context.Context) (int, error) {
	sessions, err := s.provider.GetSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch sessions: %w", err)
	}

	sessionKey, _ := ResolveCurrentSession(sessions, s.now(), s.window)
	return sessionKey, nil
}

// Drivers returns the cached participant list of a session.
func (s *SessionService) Drivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error) {
	key := string(constants.CachePrefixDrivers) + strconv.Itoa(sessionKey)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		loadCtx, cancel := s.sharedContext(ctx)
		defer cancel()
		return common.GetOrLoad(loadCtx, s.cache, s.metrics, "drivers", key, s.driverTTL,
			func(ctx context.Context) ([]dtos.Driver, error) {
				drivers, err := s.provider.GetDrivers(ctx, sessionKey)
				if err != nil {
					return nil, fmt.Errorf("fetch drivers: %w", err)
				}
				return drivers, nil
			})
	})
	if err != nil {
		return nil, err
	}
	return v.([]dtos.Driver), nil
}
