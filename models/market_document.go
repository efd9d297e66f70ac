package models

// MarketDocument represents a labeled investment description from the market corpus
type MarketDocument struct {
	ID          string        `json:"id,omitempty"`
	Description string        `json:"description"`
	RiskLabel   RiskTolerance `json:"risk_label"`
}

// Candidate is a single similarity-search hit
type Candidate struct {
	Document MarketDocument
	Distance float64 // Squared Euclidean distance, lower is more similar
}

// ScoredDocument is a candidate after risk adjustment and normalization
type ScoredDocument struct {
	Document        MarketDocument `json:"document"`
	RawDistance     float64        `json:"raw_distance"`
	AdjustedScore   float64        `json:"adjusted_score"`
	NormalizedScore float64        `json:"normalized_score"`
}

// Recommendation is the wire shape of a ranked investment recommendation
type Recommendation struct {
	Description    string  `json:"description"`
	RelevanceScore float64 `json:"relevance_score"`
}
