package marketdata

import (
	"context"

	"finwise-backend/fallback"
	"finwise-backend/metrics"

	"go.uber.org/zap"
)

// NewsSource returns article summaries for a sector
type NewsSource interface {
	News(ctx context.Context, sector string) ([]string, error)
}

// SocialSource returns recent social posts about a sector
type SocialSource interface {
	Posts(ctx context.Context, sector string) ([]string, error)
}

// FetchNews never fails: an unavailable news API yields an empty list
func FetchNews(ctx context.Context, src NewsSource, sector string, log *zap.Logger) []string {
	articles, usedFallback := fallback.Try(ctx, func(ctx context.Context) ([]string, error) {
		return src.News(ctx, sector)
	}).OnFallback(func(err error) {
		log.Warn("news unavailable, continuing without articles",
			zap.String("sector", sector),
			zap.Error(err),
		)
	}).OrElse(func() []string { return []string{} })

	if usedFallback {
		metrics.FallbacksUsed.WithLabelValues("news").Inc()
	}
	if articles == nil {
		articles = []string{}
	}
	return articles
}

// FetchPosts never fails: an unavailable social API yields the mock posts
func FetchPosts(ctx context.Context, src SocialSource, sector string, log *zap.Logger) []string {
	posts, usedFallback := fallback.Try(ctx, func(ctx context.Context) ([]string, error) {
		return src.Posts(ctx, sector)
	}).OnFallback(func(err error) {
		log.Warn("social feed unavailable, using mock posts",
			zap.String("sector", sector),
			zap.Error(err),
		)
	}).OrElse(func() []string { return MockPosts(sector) })

	if usedFallback {
		metrics.FallbacksUsed.WithLabelValues("social").Inc()
	}
	if posts == nil {
		posts = []string{}
	}
	return posts
}
