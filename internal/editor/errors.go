// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"
	"fmt"
)

var (
	// ErrUploadFailed marks a save aborted because an asset upload failed
	// or returned no usable id/url.
	ErrUploadFailed = errors.New("upload failed")

	// ErrPersistFailed marks a save aborted because the post create or
	// update failed or reported success:false.
	ErrPersistFailed = errors.New("saving the post failed")

	// ErrSaveInProgress is returned when a save or draft change arrives
	// while another save of the same session is running.
	ErrSaveInProgress = errors.New("a save is already in progress")

	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("editor session not found")
)

// SaveError is the single error a failed save surfaces. Kind is
// ErrUploadFailed or ErrPersistFailed; Err is the underlying cause.
type SaveError struct {
	Kind       error
	Err        error
	RolledBack int // uploads deleted during rollback
	Orphaned   int // uploads that could not be deleted
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("%v: %v (uploads rolled back)", e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *SaveError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
