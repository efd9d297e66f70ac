package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finwise-backend/metrics"
)

const maxTweets = 50

var ErrSocialNotConfigured = errors.New("social API bearer token not set")

// XConfig configures the X (Twitter) API v2 client
type XConfig struct {
	BaseURL     string
	BearerToken string
	Timeout     time.Duration
}

// XClient searches recent posts through the X API v2
type XClient struct {
	baseURL     string
	bearerToken string
	client      *http.Client
}

func NewXClient(cfg XConfig) *XClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &XClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		bearerToken: cfg.BearerToken,
		client:      &http.Client{Timeout: timeout},
	}
}

type recentSearchResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
}

// Posts returns the text of up to 50 recent English posts mentioning "<sector> finance"
func (c *XClient) Posts(ctx context.Context, sector string) (posts []string, err error) {
	if c.bearerToken == "" {
		return nil, ErrSocialNotConfigured
	}

	start := time.Now()
	defer func() { metrics.ObserveExternalCall("x_api", start, err) }()

	params := url.Values{
		"query":       {fmt.Sprintf("%s finance lang:en", sector)},
		"max_results": {fmt.Sprintf("%d", maxTweets)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2/tweets/search/recent?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("X API error: %d - %s", resp.StatusCode, string(body))
	}

	var payload recentSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, t := range payload.Data {
		posts = append(posts, t.Text)
		if len(posts) == maxTweets {
			break
		}
	}
	return posts, nil
}

// MockPosts are served whenever the social API cannot be reached
func MockPosts(sector string) []string {
	return []string{
		fmt.Sprintf("The %s sector is booming right now! #invest", sector),
		fmt.Sprintf("Not sure about %s, seems risky. #finance", sector),
	}
}
