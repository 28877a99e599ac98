package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"bookchat/internal/service"
)

// EmbeddingsClient is a client for a Cohere-style embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector dimension, validated per response
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the deployment's fixed vector dimension; every embedding
// returned by the provider is validated against it so a dimension mismatch
// with the vector index surfaces at the first embed call, not at upsert time.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		client:       http.DefaultClient,
	}
}

// EmbedRequest represents the request payload for the embed API.
type EmbedRequest struct {
	Model     string   `json:"model"`
	Texts     []string `json:"texts"`
	InputType string   `json:"input_type"`
}

// EmbedResponse represents the response from the embed API.
type EmbedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// EmbedDocuments embeds texts with document intent, one vector per text.
func (c *EmbeddingsClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, service.NewQueryProcessingError("no texts to embed", nil)
	}
	return c.embed(ctx, texts, inputTypeDocument)
}

// EmbedQuery embeds a single query with query intent.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embed calls the provider once. No internal retry: failures surface as
// ExternalServiceError and retry policy belongs to the caller.
func (c *EmbeddingsClient) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embed", c.BaseURL)

	payload := EmbedRequest{
		Model:     c.Model,
		Texts:     texts,
		InputType: inputType,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, service.NewExternalServiceError("failed to marshal embed request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, service.NewExternalServiceError("failed to create embed request", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, service.NewExternalServiceError("embed request failed", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, service.NewExternalServiceError(
			fmt.Sprintf("embed API returned status %d: %s", resp.StatusCode, string(raw)), nil)
	}

	var embedResp EmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, service.NewExternalServiceError("failed to decode embed response", err)
	}

	if len(embedResp.Embeddings) != len(texts) {
		return nil, service.NewExternalServiceError(
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embedResp.Embeddings)), nil)
	}

	result := make([][]float32, len(embedResp.Embeddings))
	for i, embedding := range embedResp.Embeddings {
		if len(embedding) != c.ExpectedSize {
			return nil, service.NewExternalServiceError(
				fmt.Sprintf("embedding %d has dimension %d, expected %d", i, len(embedding), c.ExpectedSize), nil)
		}

		vec := make([]float32, len(embedding))
		for j, v := range embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
