// Package seed provides the demo dataset installed when no stored
// collection exists, and a factory for generating fake stories.
package seed

import (
	"time"

	"firsttime/app/models"
)

func at(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Demo returns a fresh copy of the three demo stories. Post "1" is featured.
func Demo() []*models.Post {
	return []*models.Post{
		{
			ID:         "1",
			Title:      "Applying for a Schengen Visa for the first time",
			Author:     "Elena Gomez",
			Category:   models.CategoryTravelCulture,
			Difficulty: 4,
			IsFeatured: true,
			Content:    "I thought it would just be filling out a simple form and showing my passport. Little did I know, it's a marathon of paperwork. I spent weeks gathering bank statements, travel insurance, and flight itineraries. The actual appointment was surprisingly quick, but the anxiety leading up to it was real.",
			Tips: []string{
				"Organize your documents in the exact order requested by the consulate.",
				"Always carry extra photocopies of everything.",
				"Book your appointment at least 2-3 months in advance.",
			},
			RealityChecks: []models.RealityCheck{
				{Expectation: "Quick 1-week turnaround.", Reality: "Took 23 agonizing days."},
				{Expectation: "Clear instructions on the website.", Reality: "Vague requirements that needed Reddit threads to clarify."},
			},
			ImageURL:  "https://images.unsplash.com/photo-1544333346-64e4fe1f99be?auto=format&fit=crop&q=80&w=800",
			CreatedAt: at("2024-03-10T14:30:00Z"),
			Comments: []*models.Comment{
				{
					ID:        "c1",
					PostID:    "1",
					Author:    "TravelBug",
					Text:      "This is so helpful! I am applying next month.",
					CreatedAt: at("2024-03-11T10:00:00Z"),
				},
			},
		},
		{
			ID:         "2",
			Title:      "Replacing my first kitchen faucet",
			Author:     "Marcus Chen",
			Category:   models.CategoryHomeDIY,
			Difficulty: 2,
			Content:    "The old faucet was dripping incessantly. I watched three YouTube videos and figured it was a 20-minute job. The hardest part wasn't the plumbing itself, it was the awkward yoga poses I had to do under the sink.",
			Tips: []string{
				"Turn off the water supply completely before starting.",
				"A basin wrench is your best friend.",
				"Lay a towel down to catch any residual water.",
			},
			RealityChecks: []models.RealityCheck{
				{Expectation: "A clean swap of parts.", Reality: "Found a rusted nut that took 2 hours to budge."},
				{Expectation: "Minimal tools needed.", Reality: "Used 5 different wrenches."},
			},
			ImageURL:  "https://images.unsplash.com/photo-1584622650111-993a426fbf0a?auto=format&fit=crop&q=80&w=800",
			CreatedAt: at("2024-03-12T09:15:00Z"),
			Comments:  []*models.Comment{},
		},
		{
			ID:         "3",
			Title:      "Negotiating my salary for the first time",
			Author:     "Sarah Jenkins",
			Category:   models.CategoryCareerFinance,
			Difficulty: 4,
			Content:    "I've always been a 'people pleaser', so the idea of asking for more money felt like I was being ungrateful. I practiced my script with a friend until I felt confident. When the offer came, I took a deep breath and made my counter-case based on market research.",
			Tips: []string{
				"Always have a specific number in mind, based on research.",
				"Practice your pitch out loud to a mirror or friend.",
				"Focus on the value you bring, not your personal financial needs.",
			},
			RealityChecks: []models.RealityCheck{
				{Expectation: "They would retract the offer immediately.", Reality: "They were actually impressed by the professionalism."},
				{Expectation: "A flat \"No\".", Reality: "A \"Let me check with HR\" followed by a partial increase."},
			},
			ImageURL:  "https://images.unsplash.com/photo-1573496359142-b8d87734a5a2?auto=format&fit=crop&q=80&w=800",
			CreatedAt: at("2024-03-14T11:00:00Z"),
			Comments:  []*models.Comment{},
		},
	}
}
