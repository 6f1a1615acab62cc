package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInterface is returned when no wireless interface is present or enabled.
	ErrNoInterface = errors.New("no WiFi interface found, make sure WiFi is enabled")
	// ErrPermissionDenied is returned when the OS refuses access to scan results.
	ErrPermissionDenied = errors.New("permission is required to scan for WiFi networks")
	// ErrScanFailed is the class of all ScanFailedError values.
	ErrScanFailed = errors.New("WiFi scan failed")
	// ErrNetworkNotFound is returned by lookups for keys that are not visible.
	ErrNetworkNotFound = errors.New("network not found")
	// ErrScanRunning is returned by operations that need the poll loop stopped.
	ErrScanRunning = errors.New("scan is running")
)

// ScanFailedError carries the reason a hardware scan failed.
type ScanFailedError struct {
	Reason string
	Err    error
}

// NewScanFailedError wraps err with a reason.
func NewScanFailedError(reason string, err error) *ScanFailedError {
	return &ScanFailedError{Reason: reason, Err: err}
}

func (e *ScanFailedError) Error() string {
	return fmt.Sprintf("%v: %s", ErrScanFailed, e.Reason)
}

// Is makes errors.Is(err, ErrScanFailed) hold.
func (e *ScanFailedError) Is(target error) bool {
	return target == ErrScanFailed
}

func (e *ScanFailedError) Unwrap() error {
	return e.Err
}
