package model

// Explanation is the JSON shape the explainer asks the LLM for.
type Explanation struct {
	Summary string `json:"summary"`
}
