// Package ranking turns raw similarity-search hits into risk-adjusted, normalized
// recommendation scores.
package ranking

import (
	"errors"
	"fmt"
	"sort"

	"finwise-backend/models"
)

// ErrInvalidInput is returned for an empty candidate list or a non-positive k
var ErrInvalidInput = errors.New("invalid ranking input")

// defaultAffinity applies to any (tolerance, label) pair missing from the table
const defaultAffinity = 0.5

// normalizeEpsilon keeps the normalization denominator non-zero when all scores tie
const normalizeEpsilon = 1e-6

// affinity maps user risk tolerance -> document risk label -> multiplier
var affinity = map[models.RiskTolerance]map[models.RiskTolerance]float64{
	models.RiskConservative: {
		models.RiskConservative: 1.0,
		models.RiskModerate:     0.5,
		models.RiskAggressive:   0.0,
	},
	models.RiskModerate: {
		models.RiskConservative: 0.4,
		models.RiskModerate:     1.0,
		models.RiskAggressive:   0.6,
	},
	models.RiskAggressive: {
		models.RiskConservative: 0.0,
		models.RiskModerate:     0.5,
		models.RiskAggressive:   2.0,
	},
}

// Affinity returns the multiplier for a document label under a user's tolerance
func Affinity(tolerance, label models.RiskTolerance) float64 {
	if row, ok := affinity[tolerance]; ok {
		if v, ok := row[label]; ok {
			return v
		}
	}
	return defaultAffinity
}

// Similarity maps a non-negative distance into (0, 1]
func Similarity(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// Rank scores candidates for the given tolerance and returns the top k, highest first.
// Ties keep their input order. Scores are min-max normalized over the returned set.
func Rank(candidates []models.Candidate, tolerance models.RiskTolerance, k int) ([]models.ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidInput, k)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates to rank", ErrInvalidInput)
	}

	scored := make([]models.ScoredDocument, len(candidates))
	for i, c := range candidates {
		scored[i] = models.ScoredDocument{
			Document:      c.Document,
			RawDistance:   c.Distance,
			AdjustedScore: Similarity(c.Distance) * Affinity(tolerance, c.Document.RiskLabel),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].AdjustedScore > scored[j].AdjustedScore
	})

	if len(scored) > k {
		scored = scored[:k]
	}

	normalize(scored)
	return scored, nil
}

// normalize assumes scored is sorted descending and non-empty
func normalize(scored []models.ScoredDocument) {
	maxScore := scored[0].AdjustedScore
	minScore := scored[len(scored)-1].AdjustedScore
	if maxScore == minScore {
		maxScore += normalizeEpsilon
	}
	for i := range scored {
		scored[i].NormalizedScore = (scored[i].AdjustedScore - minScore) / (maxScore - minScore)
	}
}

// ToRecommendations converts ranked documents into their wire shape
func ToRecommendations(scored []models.ScoredDocument) []models.Recommendation {
	recs := make([]models.Recommendation, len(scored))
	for i, s := range scored {
		recs[i] = models.Recommendation{
			Description:    s.Document.Description,
			RelevanceScore: s.NormalizedScore,
		}
	}
	return recs
}
