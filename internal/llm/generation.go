package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"bookchat/internal/service"
)

// generationTemperature is a fixed deterministic-leaning decoding setting that
// favors factual grounding over creativity.
const generationTemperature = 0.3

// GenerationClient is a client for a Cohere-style text generation API.
type GenerationClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewGenerationClient creates a new generation client.
func NewGenerationClient(baseURL, apiKey, model string) *GenerationClient {
	return &GenerationClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// GenerateRequest represents the request payload for the generate API.
type GenerateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

// Generation represents a single generation in the response.
type Generation struct {
	Text string `json:"text"`
}

// GenerateResponse represents the response from the generate API.
type GenerateResponse struct {
	Generations []Generation `json:"generations"`
}

// Generate invokes the generation model with maxTokens as an upper bound on
// output length. An empty or absent generation is an ExternalServiceError:
// absence of an answer must be expressed as generated text, never as empty
// output.
func (c *GenerationClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	url := fmt.Sprintf("%s/v1/generate", c.BaseURL)

	payload := GenerateRequest{
		Model:       c.Model,
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: generationTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", service.NewExternalServiceError("failed to marshal generate request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return "", service.NewExternalServiceError("failed to create generate request", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", service.NewExternalServiceError("generate request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", service.NewExternalServiceError(
			fmt.Sprintf("generate API returned status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var generateResp GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generateResp); err != nil {
		return "", service.NewExternalServiceError("failed to decode generate response", err)
	}

	if len(generateResp.Generations) == 0 {
		return "", service.NewExternalServiceError("no generations returned", nil)
	}

	text := generateResp.Generations[0].Text
	if strings.TrimSpace(text) == "" {
		return "", service.NewExternalServiceError("empty generation returned", nil)
	}

	return text, nil
}
