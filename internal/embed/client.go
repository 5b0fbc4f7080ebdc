package embed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is Ollama's OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// ErrModelNotFound reports that the server does not serve a model.
var ErrModelNotFound = errors.New("model not found")

// Client produces embeddings.
type Client interface {
	// Models lists the model names the server serves.
	Models(ctx context.Context) ([]string, error)
	// Embed returns the embedding of text under model.
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// OpenAIClient talks to an OpenAI-compatible API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient returns a client for baseURL. Ollama ignores the key,
// so an empty apiKey is replaced by a placeholder.
func NewOpenAIClient(baseURL, apiKey string, httpClient *http.Client) *OpenAIClient {
	if apiKey == "" {
		apiKey = "ollama"
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg)}
}

// Models implements Client.
func (c *OpenAIClient) Models(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	names := make([]string, len(list.Models))
	for i, m := range list.Models {
		names[i] = m.ID
	}
	return names, nil
}

// Embed implements Client. A 404 from the server is reported as
// ErrModelNotFound.
func (c *OpenAIClient) Embed(ctx context.Context, model, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(model),
	})
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, model)
		}
		return nil, fmt.Errorf("embed with %s: %w", model, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embed with %s: empty response", model)
	}
	return resp.Data[0].Embedding, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// MissingModels returns the entries of want that no served model name
// contains, so "llama3.2" is satisfied by "llama3.2:latest".
func MissingModels(served, want []string) []string {
	var missing []string
	for _, w := range want {
		found := false
		for _, s := range served {
			if strings.Contains(s, w) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	return missing
}
