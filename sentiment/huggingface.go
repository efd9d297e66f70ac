package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"finwise-backend/metrics"
	"finwise-backend/models"
)

// HuggingFaceConfig configures the hosted inference API classifier
type HuggingFaceConfig struct {
	BaseURL  string
	Model    string
	APIToken string
	Timeout  time.Duration
}

// HuggingFaceClassifier calls a binary text-classification model over the inference API
type HuggingFaceClassifier struct {
	endpoint string
	apiToken string
	client   *http.Client
}

func NewHuggingFaceClassifier(cfg HuggingFaceConfig) *HuggingFaceClassifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HuggingFaceClassifier{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/models/" + cfg.Model,
		apiToken: cfg.APIToken,
		client:   &http.Client{Timeout: timeout},
	}
}

type inferenceLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify returns the highest-scoring label for text
func (c *HuggingFaceClassifier) Classify(ctx context.Context, text string) (_ Classification, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("huggingface", start, err) }()

	jsonData, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return Classification{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return Classification{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return Classification{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Classification{}, fmt.Errorf("classifier API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	labels, err := decodeLabels(bodyBytes)
	if err != nil {
		return Classification{}, err
	}

	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}

	label := models.SentimentLabel(strings.ToUpper(best.Label))
	if label != models.SentimentPositive && label != models.SentimentNegative {
		return Classification{}, fmt.Errorf("classifier returned unexpected label %q", best.Label)
	}

	return Classification{Label: label, Confidence: best.Score}, nil
}

// decodeLabels accepts both the nested [[...]] and the flat [...] response shapes
func decodeLabels(body []byte) ([]inferenceLabel, error) {
	var nested [][]inferenceLabel
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}

	var flat []inferenceLabel
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	return nil, errors.New("classifier returned no labels")
}
