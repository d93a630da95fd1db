package domain

import "fmt"

// HousingPreferences captures what a student wants from campus housing.
type HousingPreferences struct {
	// Budget is the budget leaning (e.g. "lowest cost", "mid-range").
	Budget string

	// Privacy is the room/bathroom preference (e.g. "single room, private bathroom").
	Privacy string

	// StayTerm is the expected length of stay (e.g. "one semester").
	StayTerm string
}

// Describe renders the preferences as prompt text.
func (p HousingPreferences) Describe() string {
	return fmt.Sprintf("Budget preference: %s\nPrivacy / private bathroom: %s\nExpected length of stay: %s\n",
		orUnspecified(p.Budget), orUnspecified(p.Privacy), orUnspecified(p.StayTerm))
}

// Query is the retrieval query used to find relevant housing context.
func (p HousingPreferences) Query() string {
	return "Based on the following preferences, recommend suitable housing:\n" +
		p.Describe() +
		"Please provide a detailed housing recommendation plan."
}

func orUnspecified(s string) string {
	if s == "" {
		return "not specified"
	}
	return s
}
