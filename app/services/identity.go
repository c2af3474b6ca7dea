package services

import "firsttime/app/models"

// CascadeAuthorName returns a copy of posts in which every post and comment
// keyed to identityKey carries name as its author. Unchanged posts are
// shared with the input; the input itself is never modified. The second
// result counts rewritten posts and comments.
func CascadeAuthorName(posts []*models.Post, identityKey, name string) ([]*models.Post, int) {
	out := make([]*models.Post, len(posts))
	count := 0
	for i, p := range posts {
		out[i] = p
		if identityKey == "" || !authoredBy(p, identityKey) {
			continue
		}

		cp := p.Clone()
		if cp.AuthorKey == identityKey {
			cp.Author = name
			count++
		}
		for _, c := range cp.Comments {
			if c.AuthorKey == identityKey {
				c.Author = name
				count++
			}
		}
		out[i] = cp
	}
	return out, count
}

func authoredBy(p *models.Post, identityKey string) bool {
	if p.AuthorKey == identityKey {
		return true
	}
	for _, c := range p.Comments {
		if c.AuthorKey == identityKey {
			return true
		}
	}
	return false
}
