// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the blog entities exchanged with the REST backend
// and the envelope and pagination shapes it wraps them in.
package models

import "time"

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// PostStatuses lists every valid post status.
var PostStatuses = []PostStatus{PostStatusDraft, PostStatusPublished, PostStatusArchived}

// PostBase holds the fields shared by raw and populated posts.
type PostBase struct {
	ID          string     `json:"_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage"`
	ReadingTime string     `json:"readingTime,omitempty"`
	Status      PostStatus `json:"status"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Post is a post as returned without population: category, tags and
// author are ids.
type Post struct {
	PostBase
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	AuthorID string   `json:"authorId,omitempty"`
}

// PostPopulated is a post returned with populate=true.
type PostPopulated struct {
	PostBase
	Category Category `json:"category"`
	Tags     []Tag    `json:"tags"`
	Author   Author   `json:"author"`
}

// IsPublished returns true if the post is in published status.
func (p *PostBase) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Author is the author summary embedded in populated posts.
type Author struct {
	ID          string `json:"_id"`
	Email       string `json:"email,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	DisplayName string `json:"displayName"`
}

// PostPayload is the body sent to create or update a post. Update sends
// the full payload; the backend treats it as a partial.
type PostPayload struct {
	Slug        string     `json:"slug,omitempty"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"coverImage"`
	Category    string     `json:"category"`
	TagIDs      []string   `json:"tagIds"`
	Status      PostStatus `json:"status,omitempty"`
	ReadingTime string     `json:"readingTime,omitempty"`
}
