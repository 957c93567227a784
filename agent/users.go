package agent

import "github.com/ashleymikali/relationship-coach-simulator/types"

// DemoUsers returns the three seeded demo profiles.
func DemoUsers() []types.Profile {
	return []types.Profile{
		{
			UserID:      "user_001",
			DisplayName: "Jordan",
			Bio:         "Software engineer who values direct communication and emotional honesty. Loves hiking, board games, and deep conversations over coffee.",
			Traits: []string{
				"Direct communicator",
				"Values clarity and honesty",
				"Introverted but warm",
				"Analytical thinker",
				"Loyal and committed",
				"Enjoys structured plans",
			},
			Boundaries: []string{
				"No public embarrassment or being put on the spot",
				"Needs alone time to recharge",
				"Prefers addressing conflicts directly rather than avoiding them",
			},
			Notes: "Partner-inspired profile with direct conflict style and sensitivity to public embarrassment",
		},
		{
			UserID:      "user_002",
			DisplayName: "Alex",
			Bio:         "Creative designer who loves spontaneity and adventure. Enjoys live music, trying new restaurants, and weekend road trips.",
			Traits: []string{
				"Spontaneous and adventurous",
				"Emotionally expressive",
				"Extroverted and social",
				"Creative problem solver",
				"Optimistic outlook",
				"Loves surprises and novelty",
			},
			Boundaries: []string{
				"Needs freedom and independence",
				"Dislikes rigid schedules",
				"Values emotional connection over logic",
			},
			Notes: "Foil profile - surface compatible with Jordan but fails in simulation due to conflict avoidance vs. directness mismatch",
		},
		{
			UserID:      "user_003",
			DisplayName: "Sam",
			Bio:         "Therapist who brings empathy and patience to relationships. Enjoys reading, yoga, and meaningful one-on-one time.",
			Traits: []string{
				"Empathetic listener",
				"Patient and understanding",
				"Values emotional intelligence",
				"Calm under pressure",
				"Enjoys deep connections",
				"Thoughtful and reflective",
			},
			Boundaries: []string{
				"No passive-aggressive behavior",
				"Needs emotional reciprocity",
				"Values vulnerability and openness",
			},
			Notes: "Potentially strong match with Jordan - both value directness and emotional honesty",
		},
	}
}
