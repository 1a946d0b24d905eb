package repositories

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is matched by every StoreError.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError wraps a failed database operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
