// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Role represents a user's permission level.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleAuthor Role = "author"
	RoleReader Role = "reader"
)

// UserStatus is the account state managed by admins.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
)

// User is an account as listed by the user management endpoints.
type User struct {
	ID              string     `json:"id"`
	UUID            string     `json:"uuid"`
	Email           string     `json:"email"`
	Username        string     `json:"username"`
	DisplayName     string     `json:"displayName,omitempty"`
	Role            Role       `json:"role"`
	Status          UserStatus `json:"status"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt,omitempty"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EmailVerified returns true once the user confirmed their address.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}

// SignUpPayload is the body for creating an account.
type SignUpPayload struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
	Role        Role   `json:"role,omitempty"`
}

// Profile is the public-facing author profile attached to a user.
type Profile struct {
	ID          string     `json:"id,omitempty"`
	UUID        string     `json:"uuid"`
	DisplayName string     `json:"displayName"`
	AvatarURL   *string    `json:"avatarUrl"`
	Bio         *string    `json:"bio"`
	WebsiteURL  *string    `json:"websiteUrl"`
	Location    *string    `json:"location"`
	TwitterURL  *string    `json:"twitterUrl"`
	GithubURL   *string    `json:"githubUrl"`
	LinkedinURL *string    `json:"linkedinUrl"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// ProfilePayload is a partial profile update; nil fields are left unchanged.
type ProfilePayload struct {
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	WebsiteURL  *string `json:"websiteUrl,omitempty"`
	Location    *string `json:"location,omitempty"`
	TwitterURL  *string `json:"twitterUrl,omitempty"`
	GithubURL   *string `json:"githubUrl,omitempty"`
	LinkedinURL *string `json:"linkedinUrl,omitempty"`
}
