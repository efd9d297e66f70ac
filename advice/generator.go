package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finwise-backend/metrics"

	"github.com/google/generative-ai-go/genai"
)

// GeminiGenerator generates text with a Gemini model
type GeminiGenerator struct {
	model   *genai.GenerativeModel
	timeout time.Duration
}

// NewGeminiGenerator configures a model on an existing client; the client stays owned by the caller
func NewGeminiGenerator(client *genai.Client, modelName string, temperature float32, timeout time.Duration) *GeminiGenerator {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text("You are a financial advisor. Give concrete, plain-text advice without markdown.")},
	}
	return &GeminiGenerator{model: model, timeout: timeout}
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveExternalCall("gemini_generate", start, err) }()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return responseText(resp)
}

// responseText concatenates the text parts of every candidate
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("API returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("API blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("API returned no candidates")
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}

	if b.Len() == 0 {
		return "", errors.New("API returned empty content")
	}
	return b.String(), nil
}
