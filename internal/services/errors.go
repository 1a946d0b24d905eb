package services

import (
	"errors"

	"infinite-experiment/paddock/internal/db/repositories"
	"infinite-experiment/paddock/internal/providers"
)

// Error taxonomy shared by the ingestion job and the API handlers.
var (
	ErrUpstreamUnavailable = providers.ErrUpstreamUnavailable
	ErrStoreUnavailable    = repositories.ErrStoreUnavailable
	ErrNoActiveSession     = errors.New("no active session")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrInternal            = errors.New("internal error")
)

// Classify maps err onto the taxonomy above. Errors matching no sentinel are
// reported as ErrInternal.
func Classify(err error) error {
	for _, kind := range []error{
		ErrNoActiveSession,
		ErrDriverNotFound,
		ErrUpstreamUnavailable,
		ErrStoreUnavailable,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
