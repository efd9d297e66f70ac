package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finwise-backend/advice"
	"finwise-backend/embedding"
	"finwise-backend/marketdata"
	"finwise-backend/models"
	"finwise-backend/sentiment"
	"finwise-backend/service"
	"finwise-backend/storage"
	"finwise-backend/vectorindex"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubStore struct{ err error }

func (s stubStore) Save(_ context.Context, p *models.UserFinanceProfile) error {
	if s.err != nil {
		return s.err
	}
	p.ID = uuid.New()
	return nil
}

type stubGenerator struct {
	text string
	err  error
}

func (g stubGenerator) Generate(context.Context, string) (string, error) { return g.text, g.err }

type stubClassifier struct{ err error }

func (c stubClassifier) Classify(_ context.Context, text string) (sentiment.Classification, error) {
	if c.err != nil {
		return sentiment.Classification{}, c.err
	}
	if strings.Contains(text, "booming") {
		return sentiment.Classification{Label: models.SentimentPositive, Confidence: 0.99}, nil
	}
	return sentiment.Classification{Label: models.SentimentNegative, Confidence: 0.97}, nil
}

type envelope struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testDeps struct {
	store      stubStore
	generator  stubGenerator
	classifier stubClassifier
	provider   marketdata.Provider
	archive    *storage.AdviceArchive
}

func newTestRouter(t *testing.T, deps testDeps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := zap.NewNop()

	if deps.provider == nil {
		deps.provider = marketdata.MockProvider{}
	}
	docs := marketdata.LoadCorpus(ctx, deps.provider, log)
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Description
	}
	emb := embedding.NewTFIDFEmbedder()
	require.NoError(t, embedding.Prepare(emb, texts))
	vectors, err := emb.EmbedMany(ctx, texts)
	require.NoError(t, err)
	idx := vectorindex.NewMemoryIndex()
	require.NoError(t, idx.Build(ctx, docs, vectors))

	adviceOpts := []service.AdviceServiceOption{
		service.WithProfileStore(deps.store),
		service.WithAdviceComposer(advice.NewComposer(deps.generator, log)),
	}
	if deps.archive != nil {
		adviceOpts = append(adviceOpts, service.WithAdviceArchive(deps.archive))
	}
	adviceSvc := service.NewAdviceService(adviceOpts...)
	sentimentSvc := service.NewSentimentService(
		service.WithNewsSource(marketdata.NewAlphaVantageClient(marketdata.AlphaVantageConfig{})),
		service.WithSocialSource(marketdata.NewXClient(marketdata.XConfig{})),
		service.WithAggregator(sentiment.NewAggregator(deps.classifier)),
	)
	recommendationSvc := service.NewRecommendationService(
		service.WithQueryEmbedder(emb),
		service.WithSearcher(idx),
	)

	r := gin.New()
	r.GET("/health", NewHealthHandler(nil, log).Health)
	NewAdvisorHandler(adviceSvc, sentimentSvc, recommendationSvc, log).RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const moderateBody = `{"income": 60000, "expenses": 54000, "goals": "buy a house", "risk_tolerance": "Moderate"}`

func TestFinancialAdvice_Success(t *testing.T) {
	r := newTestRouter(t, testDeps{generator: stubGenerator{
		text: "Example 1: Save $[amount] annually (10% of income). Consider a REIT. Additionally, buy lottery tickets.",
	}})

	w := doRequest(r, http.MethodPost, "/financial_advice/", moderateBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Advice string `json:"advice"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Advice, "A user has an annual income of $60,000"), resp.Advice)
	assert.Contains(t, resp.Advice, "Save $6,000 annually (10% of income).")
	assert.NotContains(t, resp.Advice, "Example 1:")
	assert.NotContains(t, resp.Advice, "lottery")
	assert.True(t, strings.HasSuffix(resp.Advice,
		"Additionally, build an emergency fund of $3,000-$6,000, and review your portfolio annually."), resp.Advice)
}

func TestFinancialAdvice_Errors(t *testing.T) {
	tests := []struct {
		name     string
		deps     testDeps
		body     string
		wantCode int
		wantErr  string
	}{
		{"malformed json", testDeps{}, `{"income": `, http.StatusBadRequest, "INVALID_REQUEST"},
		{"empty body", testDeps{}, ``, http.StatusBadRequest, "INVALID_REQUEST"},
		{"bad risk tolerance", testDeps{},
			`{"income": 1, "expenses": 0, "goals": "", "risk_tolerance": "YOLO"}`,
			http.StatusBadRequest, "VALIDATION_FAILED"},
		{"store down", testDeps{store: stubStore{err: errors.New("db down")}},
			moderateBody, http.StatusInternalServerError, "STORAGE_ERROR"},
		{"generator down", testDeps{generator: stubGenerator{err: errors.New("quota")}},
			moderateBody, http.StatusBadGateway, "EXTERNAL_SERVICE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.deps)
			w := doRequest(r, http.MethodPost, "/financial_advice/", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)

			var env envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestMarketSentiment_MockFeeds(t *testing.T) {
	r := newTestRouter(t, testDeps{})

	w := doRequest(r, http.MethodGet, "/market_sentiment/technology", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"news_sentiment": "NEUTRAL",
		"social_sentiment": "NEGATIVE",
		"news_articles": [],
		"tweets": [
			"The technology sector is booming right now! #invest",
			"Not sure about technology, seems risky. #finance"
		]
	}`, w.Body.String())
}

func TestMarketSentiment_ClassifierDown(t *testing.T) {
	r := newTestRouter(t, testDeps{classifier: stubClassifier{err: errors.New("model loading")}})

	w := doRequest(r, http.MethodGet, "/market_sentiment/technology", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestInvestmentRecommendations_RateLimitedProviderUsesMockCorpus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"Information": "Our standard API rate limit is 25 requests per day."}`))
	}))
	defer srv.Close()

	provider := marketdata.NewAlphaVantageClient(marketdata.AlphaVantageConfig{BaseURL: srv.URL, APIKey: "demo"})
	r := newTestRouter(t, testDeps{provider: provider})

	body := `{"income": 90000, "expenses": 40000, "goals": "grow wealth fast", "risk_tolerance": "Aggressive"}`
	w := doRequest(r, http.MethodPost, "/investment_recommendations/", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recommendations, 2)

	mock := marketdata.MockDocuments()
	assert.Equal(t, mock[0].Description, resp.Recommendations[0].Description)
	assert.InDelta(t, 1.0, resp.Recommendations[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.0, resp.Recommendations[1].RelevanceScore, 1e-9)
}

func TestInvestmentRecommendations_Validation(t *testing.T) {
	r := newTestRouter(t, testDeps{})

	w := doRequest(r, http.MethodPost, "/investment_recommendations/",
		`{"income": -5, "expenses": 0, "goals": "", "risk_tolerance": "Moderate"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestArchivedAdvice(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	archive := storage.NewAdviceArchive(store)

	profileID := uuid.MustParse("0b7e3b52-6a5e-4a55-8f43-6f2d1f0e9c11")
	_, err = archive.Save(context.Background(), &models.AdviceRecord{
		ProfileID:        profileID,
		RiskTolerance:    models.RiskConservative,
		Advice:           "Save $5,000 annually (10% of income).",
		DisposableIncome: decimal.NewFromInt(10000),
		SavingsAmount:    decimal.NewFromInt(5000),
		CreatedAt:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	r := newTestRouter(t, testDeps{archive: archive})

	w := doRequest(r, http.MethodGet, "/financial_advice/"+profileID.String(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var rec models.AdviceRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, profileID, rec.ProfileID)
	assert.Equal(t, "Save $5,000 annually (10% of income).", rec.Advice)

	w = doRequest(r, http.MethodGet, "/financial_advice/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodGet, "/financial_advice/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
