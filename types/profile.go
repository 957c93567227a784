package types

// Profile is a demo user profile used by the matchmaking simulation.
type Profile struct {
	UserID      string   `json:"user_id" yaml:"user_id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Bio         string   `json:"bio" yaml:"bio"`
	Traits      []string `json:"traits" yaml:"traits"`
	Boundaries  []string `json:"boundaries" yaml:"boundaries"`
	Notes       string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// IntakeSummary is the structured output of a matchmaker intake run.
type IntakeSummary struct {
	Preferences  []string `json:"preferences"`
	Dealbreakers []string `json:"dealbreakers"`
	DatingThesis string   `json:"dating_thesis"`
}
