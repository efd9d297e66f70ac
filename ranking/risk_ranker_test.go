package ranking

import (
	"testing"

	"finwise-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(desc string, label models.RiskTolerance) models.MarketDocument {
	return models.MarketDocument{Description: desc, RiskLabel: label}
}

func TestAffinityTable(t *testing.T) {
	tests := []struct {
		user  models.RiskTolerance
		label models.RiskTolerance
		want  float64
	}{
		{models.RiskConservative, models.RiskConservative, 1.0},
		{models.RiskConservative, models.RiskModerate, 0.5},
		{models.RiskConservative, models.RiskAggressive, 0.0},
		{models.RiskModerate, models.RiskConservative, 0.4},
		{models.RiskModerate, models.RiskModerate, 1.0},
		{models.RiskModerate, models.RiskAggressive, 0.6},
		{models.RiskAggressive, models.RiskConservative, 0.0},
		{models.RiskAggressive, models.RiskModerate, 0.5},
		{models.RiskAggressive, models.RiskAggressive, 2.0},
		{models.RiskAggressive, models.RiskTolerance("Speculative"), 0.5},
		{models.RiskTolerance("Unknown"), models.RiskModerate, 0.5},
	}

	for _, tt := range tests {
		t.Run(string(tt.user)+"/"+string(tt.label), func(t *testing.T) {
			assert.Equal(t, tt.want, Affinity(tt.user, tt.label))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(0))
	assert.Equal(t, 0.5, Similarity(1))
	assert.Greater(t, Similarity(0.2), Similarity(0.3))
}

func TestRank_RiskPreferenceWithEqualDistances(t *testing.T) {
	candidates := []models.Candidate{
		{Document: doc("bond fund", models.RiskConservative), Distance: 0.8},
		{Document: doc("tech ETF", models.RiskAggressive), Distance: 0.8},
	}

	aggressive, err := Rank(candidates, models.RiskAggressive, 2)
	require.NoError(t, err)
	assert.Equal(t, "tech ETF", aggressive[0].Document.Description)
	assert.Equal(t, "bond fund", aggressive[1].Document.Description)

	conservative, err := Rank(candidates, models.RiskConservative, 2)
	require.NoError(t, err)
	assert.Equal(t, "bond fund", conservative[0].Document.Description)
	assert.Equal(t, "tech ETF", conservative[1].Document.Description)
}

func TestRank_NormalizesToUnitRange(t *testing.T) {
	candidates := []models.Candidate{
		{Document: doc("tech ETF", models.RiskAggressive), Distance: 1.2},
		{Document: doc("bond fund", models.RiskConservative), Distance: 0.9},
		{Document: doc("REIT", models.RiskModerate), Distance: 1.0},
	}

	ranked, err := Rank(candidates, models.RiskModerate, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "REIT", ranked[0].Document.Description)
	assert.Equal(t, 1.0, ranked[0].NormalizedScore)
	assert.Equal(t, 0.0, ranked[2].NormalizedScore)
	for i, r := range ranked {
		assert.GreaterOrEqual(t, r.NormalizedScore, 0.0)
		assert.LessOrEqual(t, r.NormalizedScore, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].AdjustedScore, r.AdjustedScore)
		}
	}

	// REIT: 1/(1+1.0) * 1.0
	assert.InDelta(t, 0.5, ranked[0].AdjustedScore, 1e-12)
	assert.Equal(t, 1.0, ranked[0].RawDistance)
}

func TestRank_TruncatesToK(t *testing.T) {
	candidates := []models.Candidate{
		{Document: doc("a", models.RiskAggressive), Distance: 0.1},
		{Document: doc("b", models.RiskModerate), Distance: 0.2},
		{Document: doc("c", models.RiskConservative), Distance: 0.3},
	}

	for _, tol := range models.RiskTolerances {
		ranked, err := Rank(candidates, tol, 2)
		require.NoError(t, err)
		assert.Len(t, ranked, 2, string(tol))
		assert.Equal(t, 1.0, ranked[0].NormalizedScore)
		assert.Equal(t, 0.0, ranked[1].NormalizedScore)
	}

	ranked, err := Rank(candidates[:1], models.RiskModerate, 2)
	require.NoError(t, err)
	assert.Len(t, ranked, 1)
}

func TestRank_StableOnTies(t *testing.T) {
	candidates := []models.Candidate{
		{Document: doc("first", models.RiskModerate), Distance: 0.5},
		{Document: doc("second", models.RiskModerate), Distance: 0.5},
		{Document: doc("third", models.RiskModerate), Distance: 0.5},
	}

	ranked, err := Rank(candidates, models.RiskModerate, 3)
	require.NoError(t, err)
	assert.Equal(t, "first", ranked[0].Document.Description)
	assert.Equal(t, "second", ranked[1].Document.Description)
	assert.Equal(t, "third", ranked[2].Document.Description)

	// all adjusted scores equal: no division by zero, every output identical
	for _, r := range ranked {
		assert.Equal(t, ranked[0].NormalizedScore, r.NormalizedScore)
		assert.False(t, r.NormalizedScore != r.NormalizedScore, "NaN score")
	}
}

func TestRank_AllZeroAffinity(t *testing.T) {
	candidates := []models.Candidate{
		{Document: doc("tech ETF", models.RiskAggressive), Distance: 0.3},
		{Document: doc("crypto", models.RiskAggressive), Distance: 0.1},
	}

	ranked, err := Rank(candidates, models.RiskConservative, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "tech ETF", ranked[0].Document.Description)
	assert.Equal(t, 0.0, ranked[0].NormalizedScore)
	assert.Equal(t, 0.0, ranked[1].NormalizedScore)
}

func TestRank_InvalidInput(t *testing.T) {
	candidates := []models.Candidate{{Document: doc("a", models.RiskModerate), Distance: 0.1}}

	_, err := Rank(candidates, models.RiskModerate, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Rank(candidates, models.RiskModerate, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = Rank(nil, models.RiskModerate, 2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestToRecommendations(t *testing.T) {
	scored := []models.ScoredDocument{
		{Document: doc("REIT", models.RiskModerate), NormalizedScore: 1},
		{Document: doc("bond fund", models.RiskConservative), NormalizedScore: 0},
	}

	recs := ToRecommendations(scored)
	assert.Equal(t, []models.Recommendation{
		{Description: "REIT", RelevanceScore: 1},
		{Description: "bond fund", RelevanceScore: 0},
	}, recs)
}
