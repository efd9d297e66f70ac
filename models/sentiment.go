package models

// SentimentLabel represents a classifier label or an aggregate sentiment
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	// SentimentNeutral is only produced when there is nothing to aggregate
	SentimentNeutral SentimentLabel = "NEUTRAL"
)

// SentimentReport is the market sentiment for one sector
type SentimentReport struct {
	Sector          string         `json:"-"`
	NewsSentiment   SentimentLabel `json:"news_sentiment"`
	SocialSentiment SentimentLabel `json:"social_sentiment"`
	NewsArticles    []string       `json:"news_articles"`
	Tweets          []string       `json:"tweets"`
}
