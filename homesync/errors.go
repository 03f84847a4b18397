// Copyright 2025 Toly Pochkin
// SPDX-License-Identifier: Apache-2.0

package homesync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned by Engine.Sync when a pass is already
// running. The second trigger is dropped, not queued.
var ErrSyncInProgress = errors.New("sync pass already in progress")

// TransportError indicates the remote was unreachable at the network level.
// The queue and cursor are left untouched; the next tick retries.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError indicates the bearer credential was rejected. It is surfaced to
// the caller for re-authentication and never retried by this layer.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected (status %d)", e.StatusCode)
}

// ServerError indicates the remote rejected the request with a non-2xx
// response other than an auth failure. Queued push actions that hit a
// ServerError stay queued and are retried verbatim on the next drain.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// StorageError indicates local persistence failed. Fatal for the current
// operation; not retried within the pass.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAuthError reports whether err is (or wraps) an AuthError.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// IsServerError reports whether err is (or wraps) a ServerError.
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
