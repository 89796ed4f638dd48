package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound             = errors.New("geofence not found")
	ErrDuplicatePoint       = errors.New("geofence already exists at point")
	ErrAuthorizationMissing = errors.New("location access not granted")
)

// RegistrationError reports a rejected register/unregister command.
type RegistrationError struct {
	Op         string
	GeofenceID int64
	Err        error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("%s geofence %d: %v", e.Op, e.GeofenceID, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
