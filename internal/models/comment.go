// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
	CommentStatusSpam     CommentStatus = "spam"
	CommentStatusDeleted  CommentStatus = "deleted"
)

// Comment is a reader comment on a post, optionally a reply.
type Comment struct {
	ID        string        `json:"_id"`
	Post      string        `json:"post"`
	Author    Author        `json:"author"`
	Parent    *string       `json:"parent,omitempty"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	EditedAt  *time.Time    `json:"editedAt,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// CommentPayload is the body for posting a comment.
type CommentPayload struct {
	PostID          string  `json:"postId"`
	Content         string  `json:"content"`
	ParentCommentID *string `json:"parentCommentId,omitempty"`
}
