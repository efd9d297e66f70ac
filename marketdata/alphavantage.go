package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finwise-backend/metrics"
	"finwise-backend/models"

	"github.com/shopspring/decimal"
)

const newsArticleLimit = 5

// AlphaVantageConfig configures the Alpha Vantage client
type AlphaVantageConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Symbols []TrackedSymbol
}

// AlphaVantageClient fetches daily prices and news summaries from Alpha Vantage
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	symbols []TrackedSymbol
	client  *http.Client
}

func NewAlphaVantageClient(cfg AlphaVantageConfig) *AlphaVantageClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	symbols := cfg.Symbols
	if len(symbols) == 0 {
		symbols = DefaultSymbols
	}
	return &AlphaVantageClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		symbols: symbols,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *AlphaVantageClient) Name() string { return "alphavantage" }

type timeSeriesResponse struct {
	Information  string                       `json:"Information"`
	Note         string                       `json:"Note"`
	ErrorMessage string                       `json:"Error Message"`
	Daily        map[string]map[string]string `json:"Time Series (Daily)"`
}

// Documents returns one document per tracked symbol with its latest close. A rate limit or
// error payload for any symbol fails the whole call. Symbols without daily data are skipped.
func (c *AlphaVantageClient) Documents(ctx context.Context) ([]models.MarketDocument, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not set", ErrAPIError)
	}

	docs := make([]models.MarketDocument, 0, len(c.symbols))
	for _, s := range c.symbols {
		var payload timeSeriesResponse
		params := url.Values{
			"function": {"TIME_SERIES_DAILY"},
			"symbol":   {s.Symbol},
		}
		if err := c.query(ctx, params, &payload); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", s.Symbol, err)
		}

		if isRateLimit(payload.Information) || isRateLimit(payload.Note) {
			return nil, fmt.Errorf("fetch %s: %w", s.Symbol, ErrRateLimited)
		}
		if payload.ErrorMessage != "" {
			return nil, fmt.Errorf("fetch %s: %w: %s", s.Symbol, ErrAPIError, payload.ErrorMessage)
		}

		date, bar, ok := latestBar(payload.Daily)
		if !ok {
			continue
		}
		closePrice, err := decimal.NewFromString(bar["4. close"])
		if err != nil {
			return nil, fmt.Errorf("fetch %s: parse close %q: %w", s.Symbol, bar["4. close"], err)
		}

		docs = append(docs, models.MarketDocument{
			ID:          strings.ToLower(s.Symbol),
			Description: describeClose(s.Symbol, closePrice.String(), date, s.RiskLabel),
			RiskLabel:   s.RiskLabel,
		})
	}

	return docs, nil
}

type newsResponse struct {
	Information string `json:"Information"`
	Feed        []struct {
		Title   string `json:"title"`
		Summary string `json:"summary"`
	} `json:"feed"`
}

// News returns up to five article summaries for the sector topic
func (c *AlphaVantageClient) News(ctx context.Context, sector string) ([]string, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: API key not set", ErrAPIError)
	}

	var payload newsResponse
	params := url.Values{
		"function": {"NEWS_SENTIMENT"},
		"topics":   {sector},
	}
	if err := c.query(ctx, params, &payload); err != nil {
		return nil, err
	}
	if payload.Feed == nil {
		return nil, fmt.Errorf("%w: no news data available", ErrNoData)
	}

	articles := payload.Feed
	if len(articles) > newsArticleLimit {
		articles = articles[:newsArticleLimit]
	}

	summaries := make([]string, 0, len(articles))
	for _, a := range articles {
		if a.Summary != "" {
			summaries = append(summaries, a.Summary)
		}
	}
	return summaries, nil
}

func (c *AlphaVantageClient) query(ctx context.Context, params url.Values, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("alphavantage", start, err) }()

	params.Set("apikey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d - %s", ErrAPIError, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func isRateLimit(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "rate limit")
}

// latestBar picks the most recent trading day; dates are ISO formatted so they sort lexically
func latestBar(daily map[string]map[string]string) (string, map[string]string, bool) {
	var latest string
	for date := range daily {
		if date > latest {
			latest = date
		}
	}
	if latest == "" {
		return "", nil, false
	}
	return latest, daily[latest], true
}
