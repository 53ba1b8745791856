package services

import (
	"errors"
	"fmt"
)

// ErrBatchInFlight is returned when a run or a selection change is attempted
// while another run has not settled yet
var ErrBatchInFlight = errors.New("a rename run is already in progress")

// ValidationError rejects a request before any external call is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PermissionError means the folder cannot be read or written
type PermissionError struct {
	Directory string
	Mode      string
	Err       error
}

func (e *PermissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("permission denied for %s access to %s: %v", e.Mode, e.Directory, e.Err)
	}
	return fmt.Sprintf("permission denied for %s access to %s", e.Mode, e.Directory)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// ServiceError is a batch-level failure of the suggestion service
type ServiceError struct {
	Message     string
	RateLimited bool
	Err         error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// RenameError is a failure isolated to one file
type RenameError struct {
	Name    string
	NewName string
	Err     error
}

func (e *RenameError) Error() string {
	return fmt.Sprintf("rename %s to %s: %v", e.Name, e.NewName, e.Err)
}

func (e *RenameError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is a rate-limited ServiceError
func IsRateLimited(err error) bool {
	var se *ServiceError
	return errors.As(err, &se) && se.RateLimited
}
