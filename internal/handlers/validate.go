// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"blogdesk/internal/models"
	"blogdesk/internal/slug"
)

// Validation limits for dashboard inputs.
const (
	maxNameLen        = 100
	maxDescriptionLen = 1_000
	minPasswordLen    = 8
	maxPasswordLen    = 128
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l loginRequest) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, is.EmailFormat),
		validation.Field(&l.Password, validation.Required),
	)
}

type ownPasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (p ownPasswordRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.OldPassword, validation.Required),
		validation.Field(&p.NewPassword, validation.Required, validation.RuneLength(minPasswordLen, maxPasswordLen),
			validation.NotIn(p.OldPassword).Error("must differ from the old password")),
	)
}

type adminPasswordRequest struct {
	Password string `json:"password"`
}

func (p adminPasswordRequest) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Password, validation.Required, validation.RuneLength(minPasswordLen, maxPasswordLen)),
	)
}

type statusRequest struct {
	Status string `json:"status"`
}

func validateStatus[T ~string](status string, allowed ...T) error {
	values := make([]any, len(allowed))
	for i, a := range allowed {
		values[i] = string(a)
	}
	return validation.Errors{
		"status": validation.Validate(status, validation.Required, validation.In(values...)),
	}.Filter()
}

// slugRule accepts an empty slug (the backend derives one) or one that
// normalizes to something non-empty.
var slugRule = validation.By(func(v any) error {
	s, _ := v.(string)
	if s != "" && !slug.Valid(s) {
		return validation.NewError("validation_slug", "must contain letters or digits")
	}
	return nil
})

// normalizeSlug rewrites a user-typed slug into its URL form.
func normalizeSlug(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	if n := slug.Generate(s); n != "" {
		return n
	}
	return s
}

func validateCategory(p *models.CategoryPayload) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = normalizeSlug(p.Slug)
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&p.Slug, validation.RuneLength(0, maxNameLen), slugRule),
		validation.Field(&p.Description, validation.RuneLength(0, maxDescriptionLen)),
	)
}

func validateTag(p *models.TagPayload) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Slug = normalizeSlug(p.Slug)
	return validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required, validation.RuneLength(1, maxNameLen)),
		validation.Field(&p.Slug, validation.RuneLength(0, maxNameLen), slugRule),
	)
}

func validateSignUp(p *models.SignUpPayload) error {
	p.Email = strings.TrimSpace(p.Email)
	p.Username = strings.TrimSpace(p.Username)
	return validation.ValidateStruct(p,
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Username, validation.Required, validation.RuneLength(3, maxNameLen)),
		validation.Field(&p.Password, validation.Required, validation.RuneLength(minPasswordLen, maxPasswordLen)),
		validation.Field(&p.Role, validation.In(models.RoleAdmin, models.RoleEditor, models.RoleAuthor, models.RoleReader)),
	)
}

func validateProfile(p *models.ProfilePayload) error {
	return validation.ValidateStruct(p,
		validation.Field(&p.DisplayName, validation.NilOrNotEmpty, validation.RuneLength(0, maxNameLen)),
		validation.Field(&p.Bio, validation.RuneLength(0, maxDescriptionLen)),
		validation.Field(&p.AvatarURL, is.URL),
		validation.Field(&p.WebsiteURL, is.URL),
		validation.Field(&p.TwitterURL, is.URL),
		validation.Field(&p.GithubURL, is.URL),
		validation.Field(&p.LinkedinURL, is.URL),
	)
}
