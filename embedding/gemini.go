package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finwise-backend/metrics"
)

const (
	geminiBatchSize = 100
	maxRetries      = 3
)

// GeminiConfig configures the Gemini embeddings client
type GeminiConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Timeout        time.Duration
	InitialBackoff time.Duration
}

// GeminiEmbedder calls the Gemini embedContent and batchEmbedContents endpoints
type GeminiEmbedder struct {
	baseURL        string
	apiKey         string
	model          string
	initialBackoff time.Duration
	client         *http.Client
}

type embedRequest struct {
	Model    string       `json:"model"`
	Content  contentInput `json:"content"`
	TaskType string       `json:"task_type,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embedValues struct {
	Values []float64 `json:"values"`
}

type embedResponse struct {
	Embedding embedValues `json:"embedding"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []embedValues `json:"embeddings"`
}

func NewGeminiEmbedder(cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-004"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = time.Second
	}
	return &GeminiEmbedder{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		model:          strings.TrimPrefix(cfg.Model, "models/"),
		initialBackoff: cfg.InitialBackoff,
		client:         &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (e *GeminiEmbedder) Name() string { return "gemini" }

func (e *GeminiEmbedder) request(text, taskType string) embedRequest {
	return embedRequest{
		Model:    "models/" + e.model,
		Content:  contentInput{Parts: []partInput{{Text: text}}},
		TaskType: taskType,
	}
}

// EmbedOne embeds a retrieval query, retrying transient failures with exponential backoff
func (e *GeminiEmbedder) EmbedOne(ctx context.Context, text string) ([]float64, error) {
	var resp embedResponse
	if err := e.post(ctx, ":embedContent", e.request(text, "RETRIEVAL_QUERY"), &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingFailed)
	}
	return resp.Embedding.Values, nil
}

// EmbedMany embeds documents in batches of at most 100, the API limit
func (e *GeminiEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))
	for i := 0; i < len(texts); i += geminiBatchSize {
		end := i + geminiBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		requests := make([]embedRequest, 0, end-i)
		for _, text := range texts[i:end] {
			requests = append(requests, e.request(text, "RETRIEVAL_DOCUMENT"))
		}

		var resp batchEmbedResponse
		if err := e.post(ctx, ":batchEmbedContents", batchEmbedRequest{Requests: requests}, &resp); err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != len(requests) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrEmbeddingFailed, len(resp.Embeddings), len(requests))
		}
		for k, emb := range resp.Embeddings {
			if len(emb.Values) == 0 {
				return nil, fmt.Errorf("%w: text %d has empty embedding", ErrEmbeddingFailed, i+k)
			}
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}

func (e *GeminiEmbedder) post(ctx context.Context, method string, body interface{}, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("gemini_embedding", start, err) }()

	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/models/%s%s", e.baseURL, e.model, method)

	backoff := e.initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", e.apiKey)

		resp, err := e.client.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return fmt.Errorf("%w: failed to send request after %d attempts: %v", ErrEmbeddingFailed, maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%w: failed to decode response: %v", ErrEmbeddingFailed, err)
			}
			return nil
		}

		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: API error: %d - %s", ErrEmbeddingFailed, resp.StatusCode, string(bodyBytes))
		}
		if attempt == maxRetries-1 {
			return fmt.Errorf("%w: API error after %d attempts: %d", ErrEmbeddingFailed, maxRetries, resp.StatusCode)
		}
	}

	return ErrEmbeddingFailed
}
