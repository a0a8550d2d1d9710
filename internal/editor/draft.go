// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"blogdesk/internal/htmlref"
	"blogdesk/internal/models"
)

const (
	maxTitleLen   = 300
	maxExcerptLen = 1000
	maxContentLen = 100_000

	// wordsPerMinute is the reading speed used for the reading time estimate.
	wordsPerMinute = 200
)

// Draft is the in-progress state of a post in the editor. Content and
// CoverImage may hold local handles until the post is saved.
type Draft struct {
	Title      string            `json:"title"`
	Excerpt    string            `json:"excerpt"`
	Category   string            `json:"category"`
	Tags       []string          `json:"tags"`
	CoverImage string            `json:"coverImage"`
	Content    string            `json:"content"`
	Status     models.PostStatus `json:"status"`
}

// DraftPatch carries the fields of a draft update; nil fields are kept.
type DraftPatch struct {
	Title      *string            `json:"title,omitempty"`
	Excerpt    *string            `json:"excerpt,omitempty"`
	Category   *string            `json:"category,omitempty"`
	Tags       *[]string          `json:"tags,omitempty"`
	CoverImage *string            `json:"coverImage,omitempty"`
	Content    *string            `json:"content,omitempty"`
	Status     *models.PostStatus `json:"status,omitempty"`
}

// DraftFromPost loads a stored post into a draft.
func DraftFromPost(p *models.Post) Draft {
	return Draft{
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Category:   p.Category,
		Tags:       append([]string(nil), p.Tags...),
		CoverImage: p.CoverImage,
		Content:    p.Content,
		Status:     p.Status,
	}
}

func (d Draft) clone() Draft {
	d.Tags = append([]string(nil), d.Tags...)
	return d
}

// apply merges a patch into the draft.
func (d *Draft) apply(p DraftPatch) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Excerpt != nil {
		d.Excerpt = *p.Excerpt
	}
	if p.Category != nil {
		d.Category = *p.Category
	}
	if p.Tags != nil {
		d.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.CoverImage != nil {
		d.CoverImage = *p.CoverImage
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.Status != nil {
		d.Status = *p.Status
	}
}

// ValidationError lists the draft fields that failed validation, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

// Validate checks the draft before any network call is made.
func (d Draft) Validate() error {
	n := d
	n.Title = strings.TrimSpace(n.Title)
	n.Category = strings.TrimSpace(n.Category)

	err := validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required, validation.RuneLength(0, maxTitleLen)),
		validation.Field(&n.Excerpt, validation.RuneLength(0, maxExcerptLen)),
		validation.Field(&n.Content, validation.RuneLength(0, maxContentLen)),
		validation.Field(&n.Category, validation.Required),
		validation.Field(&n.Tags, validation.Each(validation.Required)),
		validation.Field(&n.Status, validation.In(
			models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived,
		)),
	)
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validate draft: %w", err)
	}
	ve := &ValidationError{Fields: make(map[string]string, len(errs))}
	for field, fe := range errs {
		ve.Fields[field] = fe.Error()
	}
	return ve
}

// payload builds the create/update body from the draft and the final,
// handle-free content and cover.
func (d Draft) payload(content, cover string) models.PostPayload {
	status := d.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.PostPayload{
		Title:       strings.TrimSpace(d.Title),
		Excerpt:     d.Excerpt,
		Content:     content,
		CoverImage:  cover,
		Category:    strings.TrimSpace(d.Category),
		TagIDs:      tags,
		Status:      status,
		ReadingTime: ReadingTime(content),
	}
}

// ReadingTime estimates how long the post body takes to read, rounded up
// to whole minutes with a one minute floor.
func ReadingTime(content string) string {
	words := htmlref.WordCount(content)
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
