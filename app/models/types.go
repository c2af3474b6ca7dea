package models

import "time"

// DefaultImageURL is used when a story is submitted without an uploaded image.
const DefaultImageURL = "https://images.unsplash.com/photo-1499750310107-5fef28a66643?auto=format&fit=crop&q=80&w=800"

// RealityCheck pairs what the author expected with what actually happened.
type RealityCheck struct {
	Expectation string `json:"expectation"`
	Reality     string `json:"reality"`
}

// Post represents a first-time-experience story with its comments.
type Post struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	AuthorKey     string         `json:"authorId,omitempty"`
	Category      Category       `json:"category"`
	Difficulty    int            `json:"difficulty"`
	Content       string         `json:"content"`
	Tips          []string       `json:"tips"`
	RealityChecks []RealityCheck `json:"realityChecks"`
	ImageURL      string         `json:"imageUrl"`
	CreatedAt     time.Time      `json:"createdAt"`
	IsFeatured    bool           `json:"isFeatured"`
	Comments      []*Comment     `json:"comments"`
}

// Comment represents a reply on a post. Comments are append-only.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId,omitempty"`
	Author    string    `json:"author"`
	AuthorKey string    `json:"authorId,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultDisplayName is used when the identity provider supplies no name.
const DefaultDisplayName = "Explorer"

// Identity is the authenticated user as supplied by the auth provider.
type Identity struct {
	Key           string `json:"id"`
	DisplayName   string `json:"username"`
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"isAuthenticated"`
}

// PostDraft is the submission payload for a new post.
type PostDraft struct {
	Title         string         `json:"title" validate:"required,max=200"`
	Author        string         `json:"-" validate:"required,max=100"`
	AuthorKey     string         `json:"-"`
	Category      Category       `json:"category" validate:"required,category"`
	Difficulty    int            `json:"difficulty" validate:"min=1,max=5"`
	Content       string         `json:"content" validate:"required"`
	Tips          []string       `json:"tips"`
	RealityChecks []RealityCheck `json:"realityChecks"`
	ImageURL      string         `json:"imageUrl" validate:"omitempty,url"`
}

// CommentDraft is the submission payload for a new comment.
type CommentDraft struct {
	Author    string `json:"-" validate:"required,max=100"`
	AuthorKey string `json:"-"`
	Text      string `json:"text" validate:"required,max=2000"`
}

// ProfileUpdate is the payload for changing the caller's display name.
type ProfileUpdate struct {
	DisplayName string `json:"username" validate:"required,max=100"`
}
