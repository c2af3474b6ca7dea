package models

import (
	"strings"
	"time"
)

// Normalize trims the comment draft.
func (d *CommentDraft) Normalize() {
	d.Author = strings.TrimSpace(d.Author)
	d.Text = strings.TrimSpace(d.Text)
}

// Validate checks if the comment draft meets all validation requirements
func (d *CommentDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return NewValidationError(describe(err))
	}
	return nil
}

// NewComment builds a comment from a validated draft.
func NewComment(id, postID string, d CommentDraft, createdAt time.Time) *Comment {
	return &Comment{
		ID:        id,
		PostID:    postID,
		Author:    d.Author,
		AuthorKey: d.AuthorKey,
		Text:      d.Text,
		CreatedAt: createdAt.UTC(),
	}
}
