// Package feed derives the feed view from the canonical post collection.
// Every function here is pure: it never mutates its input and returns the
// same output for the same arguments.
package feed

import (
	"slices"
	"strings"

	"firsttime/app/models"
)

// ResultState distinguishes an empty collection from a filter that matched
// nothing.
type ResultState string

const (
	StateEmpty     ResultState = "empty"
	StateNoResults ResultState = "no_results"
	StateResults   ResultState = "results"
)

// View is the derived feed.
type View struct {
	Posts    []*models.Post  `json:"posts"`
	Featured *models.Post    `json:"featured,omitempty"`
	State    ResultState     `json:"state"`
	ShowHero bool            `json:"showHero"`
	Category models.Category `json:"category"`
	Search   string          `json:"search"`
	Total    int             `json:"total"`
}

// Derive filters and sorts posts for display and picks the hero post. The
// returned view shares post pointers with the input.
func Derive(posts []*models.Post, category models.Category, search string) View {
	if category == "" {
		category = models.CategoryAll
	}

	matched := Sort(Filter(posts, category, search))
	v := View{
		Posts:    matched,
		Featured: Featured(posts),
		Category: category,
		Search:   search,
		Total:    len(posts),
	}

	switch {
	case len(posts) == 0:
		v.State = StateEmpty
	case len(matched) == 0:
		v.State = StateNoResults
	default:
		v.State = StateResults
	}
	v.ShowHero = v.Featured != nil && category == models.CategoryAll && search == ""
	return v
}

// Matches reports whether a post passes the category and search filters.
// Search is a case-insensitive substring match on title or content.
func Matches(p *models.Post, category models.Category, search string) bool {
	if category != "" && category != models.CategoryAll && p.Category != category {
		return false
	}
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Content), needle)
}

// Filter returns the matching posts in input order.
func Filter(posts []*models.Post, category models.Category, search string) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if Matches(p, category, search) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a new slice ordered featured first, then newest first.
// Posts created at the same instant keep their input order.
func Sort(posts []*models.Post) []*models.Post {
	out := slices.Clone(posts)
	if out == nil {
		out = []*models.Post{}
	}
	slices.SortStableFunc(out, func(a, b *models.Post) int {
		if a.IsFeatured != b.IsFeatured {
			if a.IsFeatured {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// Featured returns the flagged post, or the first post of the canonical
// collection when none is flagged, or nil for an empty collection.
func Featured(posts []*models.Post) *models.Post {
	for _, p := range posts {
		if p.IsFeatured {
			return p
		}
	}
	if len(posts) > 0 {
		return posts[0]
	}
	return nil
}

// ByAuthor returns the posts keyed to identityKey in canonical order.
func ByAuthor(posts []*models.Post, identityKey string) []*models.Post {
	out := []*models.Post{}
	if identityKey == "" {
		return out
	}
	for _, p := range posts {
		if p.AuthorKey == identityKey {
			out = append(out, p)
		}
	}
	return out
}
