package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubNews struct {
	articles []string
	err      error
}

func (s stubNews) News(context.Context, string) ([]string, error) { return s.articles, s.err }

type stubSocial struct {
	posts []string
	err   error
}

func (s stubSocial) Posts(context.Context, string) ([]string, error) { return s.posts, s.err }

func TestFetchNews(t *testing.T) {
	ctx := context.Background()

	got := FetchNews(ctx, stubNews{articles: []string{"a"}}, "technology", zap.NewNop())
	assert.Equal(t, []string{"a"}, got)

	got = FetchNews(ctx, stubNews{err: errors.New("down")}, "technology", zap.NewNop())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetchPosts(t *testing.T) {
	ctx := context.Background()

	got := FetchPosts(ctx, stubSocial{posts: []string{"live"}}, "energy", zap.NewNop())
	assert.Equal(t, []string{"live"}, got)

	got = FetchPosts(ctx, stubSocial{err: ErrSocialNotConfigured}, "energy", zap.NewNop())
	assert.Equal(t, []string{
		"The energy sector is booming right now! #invest",
		"Not sure about energy, seems risky. #finance",
	}, got)
}

func TestXClient_Posts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/search/recent", r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		assert.Equal(t, "technology finance lang:en", r.URL.Query().Get("query"))
		assert.Equal(t, "50", r.URL.Query().Get("max_results"))
		_, _ = w.Write([]byte(`{"data": [{"id": "1", "text": "up"}, {"id": "2", "text": "down"}]}`))
	}))
	defer srv.Close()

	client := NewXClient(XConfig{BaseURL: srv.URL, BearerToken: "token"})
	posts, err := client.Posts(context.Background(), "technology")
	require.NoError(t, err)
	assert.Equal(t, []string{"up", "down"}, posts)
}

func TestXClient_Posts_Errors(t *testing.T) {
	_, err := NewXClient(XConfig{}).Posts(context.Background(), "technology")
	assert.ErrorIs(t, err, ErrSocialNotConfigured)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err = NewXClient(XConfig{BaseURL: srv.URL, BearerToken: "token"}).Posts(context.Background(), "technology")
	assert.ErrorContains(t, err, "429")
}

func TestYahooProvider_Documents(t *testing.T) {
	orig := quoteGet
	t.Cleanup(func() { quoteGet = orig })

	ts := time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC).Unix()
	quoteGet = func(symbol string) (*finance.Quote, error) {
		if symbol == "VNQ" {
			return &finance.Quote{}, nil
		}
		return &finance.Quote{RegularMarketPrice: 512.3, RegularMarketTime: int(ts)}, nil
	}

	docs, err := NewYahooProvider(nil).Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "SPY - Close price $512.30 on 2024-05-02, suitable for Aggressive investors.", docs[0].Description)
	assert.Equal(t, "bnd", docs[1].ID)

	quoteGet = func(string) (*finance.Quote, error) { return nil, errors.New("blocked") }
	_, err = NewYahooProvider(nil).Documents(context.Background())
	assert.Error(t, err)
}
