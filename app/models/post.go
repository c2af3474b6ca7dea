package models

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultDifficulty is applied when a draft leaves difficulty unset.
const DefaultDifficulty = 3

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		panic(err)
	}
	return v
}

// Normalize trims the draft and drops blank tips and reality checks.
func (d *PostDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Content = strings.TrimSpace(d.Content)
	d.Author = strings.TrimSpace(d.Author)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	if d.Difficulty == 0 {
		d.Difficulty = DefaultDifficulty
	}

	tips := make([]string, 0, len(d.Tips))
	for _, tip := range d.Tips {
		if tip = strings.TrimSpace(tip); tip != "" {
			tips = append(tips, tip)
		}
	}
	d.Tips = tips

	checks := make([]RealityCheck, 0, len(d.RealityChecks))
	for _, check := range d.RealityChecks {
		if strings.TrimSpace(check.Expectation) == "" {
			continue
		}
		checks = append(checks, RealityCheck{
			Expectation: strings.TrimSpace(check.Expectation),
			Reality:     strings.TrimSpace(check.Reality),
		})
	}
	d.RealityChecks = checks
}

// Validate checks if the draft meets all submission requirements
func (d *PostDraft) Validate() error {
	if err := validate.Struct(d); err != nil {
		return NewValidationError(describe(err))
	}
	return nil
}

// NewPost builds a post from a validated draft.
func NewPost(id string, d PostDraft, createdAt time.Time) *Post {
	image := d.ImageURL
	if image == "" {
		image = DefaultImageURL
	}
	return &Post{
		ID:            id,
		Title:         d.Title,
		Author:        d.Author,
		AuthorKey:     d.AuthorKey,
		Category:      d.Category,
		Difficulty:    d.Difficulty,
		Content:       d.Content,
		Tips:          append([]string{}, d.Tips...),
		RealityChecks: append([]RealityCheck{}, d.RealityChecks...),
		ImageURL:      image,
		CreatedAt:     createdAt.UTC(),
		Comments:      []*Comment{},
	}
}

// AddComment appends a comment to the post
func (p *Post) AddComment(comment *Comment) error {
	if comment == nil {
		return errors.New("comment cannot be nil")
	}

	comment.PostID = p.ID
	p.Comments = append(p.Comments, comment)
	return nil
}

// Clone returns a deep copy so callers never share state with the store.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	c := *p
	c.Tips = append([]string{}, p.Tips...)
	c.RealityChecks = append([]RealityCheck{}, p.RealityChecks...)
	c.Comments = make([]*Comment, len(p.Comments))
	for i, comment := range p.Comments {
		cc := *comment
		c.Comments[i] = &cc
	}
	return &c
}

// ClonePosts deep-copies a collection, preserving order.
func ClonePosts(posts []*Post) []*Post {
	out := make([]*Post, len(posts))
	for i, p := range posts {
		out[i] = p.Clone()
	}
	return out
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "category":
			msgs = append(msgs, field+" must be one of the known categories")
		case "url":
			msgs = append(msgs, field+" must be an absolute URL")
		case "min", "max":
			msgs = append(msgs, field+" is out of range")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
