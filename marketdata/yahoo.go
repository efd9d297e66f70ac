package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finwise-backend/metrics"
	"finwise-backend/models"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// quoteGet is swapped out in tests
var quoteGet = quote.Get

// YahooProvider builds market documents from Yahoo Finance quotes
type YahooProvider struct {
	symbols []TrackedSymbol
}

func NewYahooProvider(symbols []TrackedSymbol) *YahooProvider {
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	return &YahooProvider{symbols: symbols}
}

func (p *YahooProvider) Name() string { return "yahoo" }

func (p *YahooProvider) Documents(ctx context.Context) ([]models.MarketDocument, error) {
	docs := make([]models.MarketDocument, 0, len(p.symbols))
	for _, s := range p.symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		q, err := p.fetch(s.Symbol)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", s.Symbol, err)
		}
		if q == nil || q.RegularMarketPrice == 0 {
			continue
		}

		date := time.Unix(int64(q.RegularMarketTime), 0).UTC().Format("2006-01-02")
		price := decimal.NewFromFloat(q.RegularMarketPrice).StringFixed(2)
		docs = append(docs, models.MarketDocument{
			ID:          strings.ToLower(s.Symbol),
			Description: describeClose(s.Symbol, price, date, s.RiskLabel),
			RiskLabel:   s.RiskLabel,
		})
	}
	return docs, nil
}

func (p *YahooProvider) fetch(symbol string) (q *finance.Quote, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("yahoo_finance", start, err) }()
	return quoteGet(symbol)
}
