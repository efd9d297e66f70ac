package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"finwise-backend/marketdata"
	"finwise-backend/models"

	"go.uber.org/zap"
)

// TextAggregator reduces a batch of texts to one sentiment label
type TextAggregator interface {
	Aggregate(ctx context.Context, texts []string) (models.SentimentLabel, error)
}

// SentimentCache stores finished reports per sector
type SentimentCache interface {
	Get(ctx context.Context, sector string) (*models.SentimentReport, bool, error)
	Set(ctx context.Context, report *models.SentimentReport) error
}

// SentimentService builds market sentiment reports from news and social feeds
type SentimentService struct {
	news       marketdata.NewsSource
	social     marketdata.SocialSource
	aggregator TextAggregator
	cache      SentimentCache
	log        *zap.Logger
}

// SentimentServiceOption is a functional option for SentimentService
type SentimentServiceOption func(*SentimentService)

// WithNewsSource sets the news feed
func WithNewsSource(src marketdata.NewsSource) SentimentServiceOption {
	return func(s *SentimentService) {
		s.news = src
	}
}

// WithSocialSource sets the social feed
func WithSocialSource(src marketdata.SocialSource) SentimentServiceOption {
	return func(s *SentimentService) {
		s.social = src
	}
}

// WithAggregator sets the sentiment aggregator
func WithAggregator(a TextAggregator) SentimentServiceOption {
	return func(s *SentimentService) {
		s.aggregator = a
	}
}

// WithSentimentCache sets the optional report cache
func WithSentimentCache(c SentimentCache) SentimentServiceOption {
	return func(s *SentimentService) {
		s.cache = c
	}
}

// WithSentimentLogger sets the logger
func WithSentimentLogger(log *zap.Logger) SentimentServiceOption {
	return func(s *SentimentService) {
		s.log = log
	}
}

// NewSentimentService creates a new sentiment service
func NewSentimentService(opts ...SentimentServiceOption) *SentimentService {
	s := &SentimentService{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MarketSentimentRequest represents a sentiment lookup for one sector
type MarketSentimentRequest struct {
	Sector string
}

// MarketSentiment returns the aggregate news and social sentiment for a sector.
// Feed outages fall back inside marketdata, so only the classifier can fail the request.
func (s *SentimentService) MarketSentiment(ctx context.Context, req MarketSentimentRequest) (*models.SentimentReport, error) {
	if s.news == nil || s.social == nil {
		return nil, errors.New("sentiment sources not set")
	}
	if s.aggregator == nil {
		return nil, errors.New("sentiment aggregator not set")
	}

	sector := strings.TrimSpace(req.Sector)
	if sector == "" {
		return nil, fmt.Errorf("%w: sector is required", ErrValidation)
	}

	if report := s.cached(ctx, sector); report != nil {
		return report, nil
	}

	articles := marketdata.FetchNews(ctx, s.news, sector, s.log)
	posts := marketdata.FetchPosts(ctx, s.social, sector, s.log)

	newsLabel, err := s.aggregator.Aggregate(ctx, articles)
	if err != nil {
		return nil, fmt.Errorf("%w: news sentiment: %v", ErrExternalService, err)
	}
	socialLabel, err := s.aggregator.Aggregate(ctx, posts)
	if err != nil {
		return nil, fmt.Errorf("%w: social sentiment: %v", ErrExternalService, err)
	}

	report := &models.SentimentReport{
		Sector:          sector,
		NewsSentiment:   newsLabel,
		SocialSentiment: socialLabel,
		NewsArticles:    articles,
		Tweets:          posts,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, report); err != nil {
			s.log.Warn("failed to cache sentiment report", zap.String("sector", sector), zap.Error(err))
		}
	}
	return report, nil
}

func (s *SentimentService) cached(ctx context.Context, sector string) *models.SentimentReport {
	if s.cache == nil {
		return nil
	}
	report, found, err := s.cache.Get(ctx, sector)
	if err != nil {
		s.log.Warn("sentiment cache unavailable", zap.String("sector", sector), zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return report
}
