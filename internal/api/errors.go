// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package api

import (
	"fmt"
	"net/http"

	"blogdesk/internal/apperr"
)

// Error is a failure reported by the backend: a non-2xx status or an
// envelope with success:false.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// Unwrap maps backend statuses onto the shared sentinel errors.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusUnauthorized:
		return apperr.ErrUnauthenticated
	case http.StatusForbidden:
		return apperr.ErrUnauthorized
	case http.StatusConflict:
		return apperr.ErrConflict
	}
	return nil
}
