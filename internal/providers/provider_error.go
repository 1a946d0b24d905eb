package providers

import (
	"errors"
	"fmt"
)

// ErrUpstreamUnavailable is matched by every ProviderError.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ProviderError describes a failed call to the telemetry API.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}
