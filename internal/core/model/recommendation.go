package model

type RecommendationResult struct {
	Book   Book    `json:"book"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
