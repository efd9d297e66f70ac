package service

import (
	"context"
	"errors"
	"fmt"

	"finwise-backend/models"
	"finwise-backend/ranking"

	"go.uber.org/zap"
)

const (
	defaultSearchK = 3
	defaultTopK    = 2
)

// QueryEmbedder embeds a single search query
type QueryEmbedder interface {
	EmbedOne(ctx context.Context, text string) ([]float64, error)
}

// Searcher returns the nearest market documents to a vector
type Searcher interface {
	Search(ctx context.Context, vector []float64, k int) ([]models.Candidate, error)
}

// RecommendationService ranks market documents against a user's goals and risk tolerance
type RecommendationService struct {
	embedder QueryEmbedder
	index    Searcher
	searchK  int
	topK     int
	log      *zap.Logger
}

// RecommendationServiceOption is a functional option for RecommendationService
type RecommendationServiceOption func(*RecommendationService)

// WithQueryEmbedder sets the embedder used for search queries
func WithQueryEmbedder(e QueryEmbedder) RecommendationServiceOption {
	return func(s *RecommendationService) {
		s.embedder = e
	}
}

// WithSearcher sets the similarity index
func WithSearcher(idx Searcher) RecommendationServiceOption {
	return func(s *RecommendationService) {
		s.index = idx
	}
}

// WithSearchK sets how many candidates are pulled from the index
func WithSearchK(k int) RecommendationServiceOption {
	return func(s *RecommendationService) {
		if k > 0 {
			s.searchK = k
		}
	}
}

// WithTopK sets how many recommendations are returned
func WithTopK(k int) RecommendationServiceOption {
	return func(s *RecommendationService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithRecommendationLogger sets the logger
func WithRecommendationLogger(log *zap.Logger) RecommendationServiceOption {
	return func(s *RecommendationService) {
		s.log = log
	}
}

// NewRecommendationService creates a new recommendation service
func NewRecommendationService(opts ...RecommendationServiceOption) *RecommendationService {
	s := &RecommendationService{
		searchK: defaultSearchK,
		topK:    defaultTopK,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecommendRequest represents a request for investment recommendations
type RecommendRequest struct {
	Profile *models.UserFinanceProfile
}

// RecommendResult holds ranked recommendations, best first
type RecommendResult struct {
	Recommendations []models.Recommendation
}

// SearchQuery is the text embedded to find matching market documents
func SearchQuery(p *models.UserFinanceProfile) string {
	return fmt.Sprintf("Investment opportunities for a user with goals: %s, risk tolerance: %s",
		p.Goals, p.RiskTolerance)
}

// Recommend searches the index with the profile's goals and re-ranks hits by risk affinity
func (s *RecommendationService) Recommend(ctx context.Context, req RecommendRequest) (*RecommendResult, error) {
	if s.embedder == nil {
		return nil, errors.New("query embedder not set")
	}
	if s.index == nil {
		return nil, errors.New("searcher not set")
	}
	if err := validateProfile(req.Profile); err != nil {
		return nil, err
	}

	query := SearchQuery(req.Profile)
	vector, err := s.embedder.EmbedOne(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrExternalService, err)
	}

	candidates, err := s.index.Search(ctx, vector, s.searchK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	s.log.Debug("similarity search",
		zap.String("query", query),
		zap.Int("candidates", len(candidates)),
	)

	if len(candidates) == 0 {
		return &RecommendResult{Recommendations: []models.Recommendation{}}, nil
	}

	scored, err := ranking.Rank(candidates, req.Profile.RiskTolerance, s.topK)
	if err != nil {
		return nil, fmt.Errorf("rank candidates: %w", err)
	}

	return &RecommendResult{Recommendations: ranking.ToRecommendations(scored)}, nil
}
