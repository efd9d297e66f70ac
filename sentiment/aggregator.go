package sentiment

import (
	"context"
	"fmt"

	"finwise-backend/models"
)

// Classification is a single classifier verdict
type Classification struct {
	Label      models.SentimentLabel `json:"label"`
	Confidence float64               `json:"confidence"`
}

// Classifier labels a text as POSITIVE or NEGATIVE
type Classifier interface {
	Classify(ctx context.Context, text string) (Classification, error)
}

// Majority reduces a batch of votes to one label. POSITIVE requires a strict majority,
// so an exact half split resolves to NEGATIVE. An empty batch is NEUTRAL.
func Majority(votes []models.SentimentLabel) models.SentimentLabel {
	if len(votes) == 0 {
		return models.SentimentNeutral
	}

	positive := 0
	for _, v := range votes {
		if v == models.SentimentPositive {
			positive++
		}
	}

	// positive > len/2 without float division
	if 2*positive > len(votes) {
		return models.SentimentPositive
	}
	return models.SentimentNegative
}

// Aggregator classifies a batch of texts and reduces them with Majority
type Aggregator struct {
	classifier Classifier
}

func NewAggregator(classifier Classifier) *Aggregator {
	return &Aggregator{classifier: classifier}
}

// Aggregate skips empty texts, classifies the rest in order and returns the majority label
func (a *Aggregator) Aggregate(ctx context.Context, texts []string) (models.SentimentLabel, error) {
	votes := make([]models.SentimentLabel, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		result, err := a.classifier.Classify(ctx, text)
		if err != nil {
			return "", fmt.Errorf("classify text %d: %w", i, err)
		}
		votes = append(votes, result.Label)
	}
	return Majority(votes), nil
}
