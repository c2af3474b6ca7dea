package seed

import (
	"fmt"
	"strings"

	"firsttime/app/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds fake submissions for development. Drafts go through the
// post store like real submissions so they are validated and persisted.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// PostDraft returns a valid, randomly populated post draft.
func (f *Factory) PostDraft() models.PostDraft {
	category := models.Categories[f.faker.Number(0, len(models.Categories)-1)]

	tips := make([]string, f.faker.Number(1, 3))
	for i := range tips {
		tips[i] = f.faker.Sentence(8)
	}
	checks := make([]models.RealityCheck, f.faker.Number(0, 2))
	for i := range checks {
		checks[i] = models.RealityCheck{
			Expectation: f.faker.Sentence(6),
			Reality:     f.faker.Sentence(6),
		}
	}

	return models.PostDraft{
		Title:         fmt.Sprintf("My first time %s", strings.ToLower(f.faker.HipsterSentence(4))),
		Author:        f.faker.Name(),
		Category:      category,
		Difficulty:    f.faker.Number(1, 5),
		Content:       f.faker.Paragraph(1, 3, 12, " "),
		Tips:          tips,
		RealityChecks: checks,
		ImageURL:      fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
	}
}

// CommentDraft returns a valid, randomly populated comment draft.
func (f *Factory) CommentDraft() models.CommentDraft {
	return models.CommentDraft{
		Author: f.faker.Username(),
		Text:   f.faker.Sentence(12),
	}
}
