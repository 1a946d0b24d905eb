package providers

import (
	"context"
	"time"

	"infinite-experiment/paddock/internal/models/dtos"
)

// TelemetryProvider defines the upstream telemetry source. Every call returns
// the raw upstream array or an error that matches ErrUpstreamUnavailable.
type TelemetryProvider interface {
	// GetSessions fetches the full session catalog
	GetSessions(ctx context.Context) ([]dtos.Session, error)

	// GetPositions fetches the position snapshot of a session
	GetPositions(ctx context.Context, sessionKey int) ([]dtos.RawPosition, error)

	// GetDrivers fetches participant metadata of a session
	GetDrivers(ctx context.Context, sessionKey int) ([]dtos.Driver, error)

	// GetCarData fetches telemetry samples. driverNumber 0 means all drivers,
	// a zero since means no lower date bound.
	GetCarData(ctx context.Context, sessionKey, driverNumber int, since time.Time) ([]dtos.CarData, error)
}
