package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// FallbackExplanation is recorded when the explanation service fails or
// times out. A missing explanation never blocks recording the finding.
const FallbackExplanation = "LLM explanation unavailable."

// Explainer produces a natural-language explanation for a detected gap
type Explainer interface {
	Explain(ctx context.Context, regulationText, documentText string, actionSteps []string) (string, error)
}

// GeminiExplainer asks a Gemini model to explain a compliance gap
type GeminiExplainer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiExplainer creates an explainer backed by the given client
func NewGeminiExplainer(client *genai.Client) *GeminiExplainer {
	return &GeminiExplainer{
		client:  client,
		model:   "gemini-2.0-flash",
		timeout: 20 * time.Second,
	}
}

// Explain implements Explainer. The call is bounded by the explainer's
// timeout on top of whatever deadline the caller supplies.
func (e *GeminiExplainer) Explain(ctx context.Context, regulationText, documentText string, actionSteps []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	model := e.client.GenerativeModel(e.model)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(180)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text("You are a compliance assistant explaining gaps clearly.")},
	}

	prompt := fmt.Sprintf("Regulation: %s\nDocument: %s\nSuggested Actions: %s",
		regulationText, documentText, strings.Join(actionSteps, "; "))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("explanation request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("explanation response has no candidates")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}

	explanation := strings.TrimSpace(builder.String())
	if explanation == "" {
		return "", fmt.Errorf("explanation response is empty")
	}

	return explanation, nil
}
