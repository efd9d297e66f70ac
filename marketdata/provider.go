// Package marketdata loads the investment corpus and the news/social text used for
// sentiment, falling back to fixed mock data whenever a live source is unavailable.
package marketdata

import (
	"context"
	"errors"
	"fmt"

	"finwise-backend/fallback"
	"finwise-backend/metrics"
	"finwise-backend/models"

	"go.uber.org/zap"
)

var (
	ErrRateLimited = errors.New("market data API rate limit exceeded")
	ErrAPIError    = errors.New("market data API returned an error")
	ErrNoData      = errors.New("market data API returned no documents")
)

// Provider fetches the labeled market documents the recommendation index is built from
type Provider interface {
	Name() string
	Documents(ctx context.Context) ([]models.MarketDocument, error)
}

// TrackedSymbol is a ticker and the risk label its documents carry
type TrackedSymbol struct {
	Symbol    string
	RiskLabel models.RiskTolerance
}

// DefaultSymbols covers one broad-market, one bond and one real-estate ETF
var DefaultSymbols = []TrackedSymbol{
	{Symbol: "SPY", RiskLabel: models.RiskAggressive},
	{Symbol: "BND", RiskLabel: models.RiskConservative},
	{Symbol: "VNQ", RiskLabel: models.RiskModerate},
}

// MockDocuments returns the fixed corpus used when live market data is unavailable
func MockDocuments() []models.MarketDocument {
	return []models.MarketDocument{
		{
			ID:          "mock-tqqq",
			Description: "Tech sector ETF (TQQQ) - High risk, high reward, suitable for aggressive investors, 15% growth last year.",
			RiskLabel:   models.RiskAggressive,
		},
		{
			ID:          "mock-bnd",
			Description: "Bond fund (BND) - Low risk, stable returns, ideal for conservative investors, 3% growth last year.",
			RiskLabel:   models.RiskConservative,
		},
		{
			ID:          "mock-reit",
			Description: "Real estate investment trust (REIT) - Moderate risk, good for balanced portfolios, 8% growth last year.",
			RiskLabel:   models.RiskModerate,
		},
	}
}

// MockProvider always serves the mock corpus
type MockProvider struct{}

func (MockProvider) Name() string { return "mock" }

func (MockProvider) Documents(context.Context) ([]models.MarketDocument, error) {
	return MockDocuments(), nil
}

// LoadCorpus fetches documents from p once. Any failure, including an empty result,
// yields the whole mock corpus; partial live results are never mixed with mock data.
func LoadCorpus(ctx context.Context, p Provider, log *zap.Logger) []models.MarketDocument {
	docs, usedFallback := fallback.Try(ctx, func(ctx context.Context) ([]models.MarketDocument, error) {
		docs, err := p.Documents(ctx)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, ErrNoData
		}
		return docs, nil
	}).OnFallback(func(err error) {
		log.Warn("market data unavailable, using mock corpus",
			zap.String("provider", p.Name()),
			zap.Error(err),
		)
	}).OrElse(MockDocuments)

	if usedFallback {
		metrics.FallbacksUsed.WithLabelValues("market_data").Inc()
	}
	return docs
}

func describeClose(symbol, price, date string, risk models.RiskTolerance) string {
	return fmt.Sprintf("%s - Close price $%s on %s, suitable for %s investors.", symbol, price, date, risk)
}
