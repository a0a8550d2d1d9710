// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogdesk/internal/api"
	"blogdesk/internal/apperr"
	"blogdesk/internal/editor"
	"blogdesk/internal/staging"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error      string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
	RolledBack *int              `json:"rolledBack,omitempty"`
	Orphaned   *int              `json:"orphaned,omitempty"`
}

// statusFor maps an error to its HTTP status and response body.
func statusFor(err error) (int, errorBody) {
	var (
		verr    *editor.ValidationError
		ozzo    validation.Errors
		serr    *editor.SaveError
		bad     *badRequest
		backend *api.Error
	)

	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, errorBody{Error: bad.msg}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: verr.Fields}
	case errors.As(err, &ozzo):
		return http.StatusUnprocessableEntity, errorBody{Error: "validation failed", Fields: fieldMessages(ozzo)}
	case errors.Is(err, staging.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType, errorBody{Error: err.Error()}
	case errors.Is(err, editor.ErrSaveInProgress):
		return http.StatusConflict, errorBody{Error: err.Error()}
	case errors.As(err, &serr):
		return http.StatusBadGateway, errorBody{Error: serr.Error(), RolledBack: &serr.RolledBack, Orphaned: &serr.Orphaned}
	case errors.Is(err, editor.ErrSessionNotFound), errors.Is(err, staging.ErrNotStaged), errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found"}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Error: messageOf(err, "authentication required")}
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden, errorBody{Error: messageOf(err, "forbidden")}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, errorBody{Error: messageOf(err, err.Error())}
	case errors.As(err, &backend):
		// Client errors the backend reports are the dashboard's too.
		if backend.Status >= 400 && backend.Status < 500 {
			return backend.Status, errorBody{Error: backend.Message}
		}
		return http.StatusBadGateway, errorBody{Error: "blog backend error: " + backend.Message}
	default:
		return http.StatusInternalServerError, errorBody{Error: "internal server error"}
	}
}

// respondError writes the mapped error response. Server-side failures are
// logged with the request path.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, body)
}

func fieldMessages(errs validation.Errors) map[string]string {
	out := make(map[string]string, len(errs))
	for field, e := range errs {
		out[field] = e.Error()
	}
	return out
}

// messageOf prefers the backend's own message over fallback.
func messageOf(err error, fallback string) string {
	var backend *api.Error
	if errors.As(err, &backend) && backend.Message != "" {
		return backend.Message
	}
	return fallback
}
