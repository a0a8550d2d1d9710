// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"blogdesk/internal/editor"
	"blogdesk/internal/staging"
)

const (
	// maxUploadSize is the maximum size of a staged image (20 MB).
	maxUploadSize = 20 << 20

	// multipartMemory is how much of a multipart body is kept in memory.
	multipartMemory = 8 << 20
)

type openSessionRequest struct {
	PostID string `json:"postId"`
}

// saveResponse is returned by a committed save. Warnings carry partial
// cleanup failures; the save itself succeeded.
type saveResponse struct {
	*editor.Result
	Session  editor.View `json:"session"`
	Warnings []string    `json:"warnings,omitempty"`
}

// session loads the editor session named in the URL for the caller.
func (d *Dashboard) session(r *http.Request) (*editor.Session, error) {
	return d.registry.Get(chi.URLParam(r, "sid"), owner(r))
}

// OpenSession opens an editor session: a new post, or an existing one
// when postId is given.
func (d *Dashboard) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		respondError(w, r, err)
		return
	}

	var s *editor.Session
	if id := strings.TrimSpace(req.PostID); id != "" {
		post, err := d.client(r).Posts().Get(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		s = d.registry.OpenEdit(owner(r), post, d.classifier)
	} else {
		s = d.registry.OpenNew(owner(r))
	}

	writeJSON(w, http.StatusCreated, s.View())
}

// GetSession returns the draft, save state and staged files of a session.
func (d *Dashboard) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// CloseSession tears a session down and releases its staged images.
func (d *Dashboard) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := d.registry.Close(r.Context(), chi.URLParam(r, "sid"), owner(r)); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateDraft applies a partial draft update.
func (d *Dashboard) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var patch editor.DraftPatch
	if err := decodeJSON(w, r, &patch, false); err != nil {
		respondError(w, r, err)
		return
	}
	if _, err := s.Update(r.Context(), patch); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// StageCover stages the uploaded file as the draft's cover.
func (d *Dashboard) StageCover(w http.ResponseWriter, r *http.Request) {
	d.stage(w, r, staging.KindCover)
}

// StageImage stages the uploaded file as an inline image. The dashboard
// inserts the returned handle into the content.
func (d *Dashboard) StageImage(w http.ResponseWriter, r *http.Request) {
	d.stage(w, r, staging.KindInline)
}

func (d *Dashboard) stage(w http.ResponseWriter, r *http.Request, kind staging.Kind) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	f, err := readUpload(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var handle string
	if kind == staging.KindCover {
		handle, err = s.StageCover(r.Context(), f)
	} else {
		handle, err = s.StageImage(r.Context(), f)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"handle": handle})
}

// ClearCover removes the draft's cover.
func (d *Dashboard) ClearCover(w http.ResponseWriter, r *http.Request) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := s.ClearCover(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

// StagedFile serves the bytes behind a staged handle, or a downscaled
// JPEG with ?preview=1.
func (d *Dashboard) StagedFile(w http.ResponseWriter, r *http.Request) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	f, err := s.OpenStaged(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	data, contentType := f.Data, f.ContentType
	if r.URL.Query().Get("preview") == "1" {
		preview, err := staging.Preview(f.Data, staging.PreviewMaxWidth)
		if err != nil {
			d.logger.Warn("staged preview failed, serving original", "name", f.Name, "error", err)
		} else if preview != nil {
			data, contentType = preview, "image/jpeg"
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `inline; filename="`+sanitizeFilename(f.Name)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Save runs the save workflow of a session with the caller's credentials.
func (d *Dashboard) Save(w http.ResponseWriter, r *http.Request) {
	s, err := d.session(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c := d.client(r)
	res, err := d.saver.With(d.assetClient(c), c.Posts()).Save(r.Context(), s)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := saveResponse{Result: res, Session: s.View()}
	if warning := res.Cleanup.Warning(); warning != "" {
		resp.Warnings = append(resp.Warnings, warning)
	}
	writeJSON(w, http.StatusOK, resp)
}

// readUpload reads the "file" part of a multipart request.
func readUpload(w http.ResponseWriter, r *http.Request) (staging.File, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return staging.File{}, errBadRequest("file too large")
		}
		return staging.File{}, errBadRequest("expected a multipart form with a file field")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return staging.File{}, errBadRequest("missing file field")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return staging.File{}, errBadRequest("reading upload failed")
	}
	if len(data) > maxUploadSize {
		return staging.File{}, errBadRequest("file too large (max 20 MB)")
	}

	return staging.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// sanitizeFilename keeps a filename safe for a Content-Disposition header.
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 || r == 0x7f {
			return '_'
		}
		return r
	}, name)
}
