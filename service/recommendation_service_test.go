package service

import (
	"context"
	"errors"
	"testing"

	"finwise-backend/embedding"
	"finwise-backend/marketdata"
	"finwise-backend/models"
	"finwise-backend/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float64
	err    error
	query  string
}

func (f *fakeEmbedder) EmbedOne(_ context.Context, text string) ([]float64, error) {
	f.query = text
	return f.vector, f.err
}

type fakeSearcher struct {
	candidates []models.Candidate
	err        error
	gotK       int
}

func (f *fakeSearcher) Search(_ context.Context, _ []float64, k int) ([]models.Candidate, error) {
	f.gotK = k
	return f.candidates, f.err
}

func TestSearchQuery(t *testing.T) {
	assert.Equal(t,
		"Investment opportunities for a user with goals: retire early, risk tolerance: Moderate",
		SearchQuery(moderateProfile()))
}

func TestRecommend_RanksByRiskAffinity(t *testing.T) {
	emb := &fakeEmbedder{vector: []float64{1, 0}}
	idx := &fakeSearcher{candidates: []models.Candidate{
		{Document: models.MarketDocument{Description: "tech", RiskLabel: models.RiskAggressive}, Distance: 0.5},
		{Document: models.MarketDocument{Description: "bonds", RiskLabel: models.RiskConservative}, Distance: 0.5},
		{Document: models.MarketDocument{Description: "reit", RiskLabel: models.RiskModerate}, Distance: 0.5},
	}}
	svc := NewRecommendationService(WithQueryEmbedder(emb), WithSearcher(idx))

	result, err := svc.Recommend(context.Background(), RecommendRequest{Profile: moderateProfile()})
	require.NoError(t, err)
	assert.Equal(t, 3, idx.gotK)
	assert.Equal(t, SearchQuery(moderateProfile()), emb.query)

	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "reit", result.Recommendations[0].Description)
	assert.InDelta(t, 1.0, result.Recommendations[0].RelevanceScore, 1e-9)
	assert.Equal(t, "tech", result.Recommendations[1].Description)
	assert.InDelta(t, 0.0, result.Recommendations[1].RelevanceScore, 1e-9)
}

func TestRecommend_Options(t *testing.T) {
	idx := &fakeSearcher{candidates: []models.Candidate{
		{Document: models.MarketDocument{Description: "a", RiskLabel: models.RiskModerate}},
	}}
	svc := NewRecommendationService(
		WithQueryEmbedder(&fakeEmbedder{}),
		WithSearcher(idx),
		WithSearchK(5),
		WithTopK(0), // ignored
	)

	result, err := svc.Recommend(context.Background(), RecommendRequest{Profile: moderateProfile()})
	require.NoError(t, err)
	assert.Equal(t, 5, idx.gotK)
	assert.Len(t, result.Recommendations, 1)
}

func TestRecommend_Errors(t *testing.T) {
	ctx := context.Background()
	req := RecommendRequest{Profile: moderateProfile()}

	_, err := NewRecommendationService(WithSearcher(&fakeSearcher{})).Recommend(ctx, req)
	assert.EqualError(t, err, "query embedder not set")

	_, err = NewRecommendationService(
		WithQueryEmbedder(&fakeEmbedder{err: errors.New("401")}),
		WithSearcher(&fakeSearcher{}),
	).Recommend(ctx, req)
	assert.ErrorIs(t, err, ErrExternalService)

	_, err = NewRecommendationService(
		WithQueryEmbedder(&fakeEmbedder{}),
		WithSearcher(&fakeSearcher{err: vectorindex.ErrEmptyIndex}),
	).Recommend(ctx, req)
	assert.ErrorIs(t, err, vectorindex.ErrEmptyIndex)

	_, err = NewRecommendationService(
		WithQueryEmbedder(&fakeEmbedder{}),
		WithSearcher(&fakeSearcher{}),
	).Recommend(ctx, RecommendRequest{Profile: &models.UserFinanceProfile{RiskTolerance: "Bold"}})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecommend_EmptySearchResult(t *testing.T) {
	svc := NewRecommendationService(WithQueryEmbedder(&fakeEmbedder{}), WithSearcher(&fakeSearcher{}))

	result, err := svc.Recommend(context.Background(), RecommendRequest{Profile: moderateProfile()})
	require.NoError(t, err)
	assert.NotNil(t, result.Recommendations)
	assert.Empty(t, result.Recommendations)
}

func TestRecommend_MockCorpusEndToEnd(t *testing.T) {
	ctx := context.Background()
	docs := marketdata.MockDocuments()
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Description
	}

	emb := embedding.NewTFIDFEmbedder()
	require.NoError(t, emb.Prepare(texts))
	vectors, err := emb.EmbedMany(ctx, texts)
	require.NoError(t, err)

	idx := vectorindex.NewMemoryIndex()
	require.NoError(t, idx.Build(ctx, docs, vectors))

	svc := NewRecommendationService(WithQueryEmbedder(emb), WithSearcher(idx))
	profile := moderateProfile()
	profile.RiskTolerance = models.RiskAggressive

	result, err := svc.Recommend(ctx, RecommendRequest{Profile: profile})
	require.NoError(t, err)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, docs[0].Description, result.Recommendations[0].Description, "aggressive users see the tech ETF first")
	assert.InDelta(t, 1.0, result.Recommendations[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.0, result.Recommendations[1].RelevanceScore, 1e-9)
}
