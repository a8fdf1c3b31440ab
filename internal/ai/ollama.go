package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default Ollama configuration. The embedding and generation models match
// what the service ships with; both can be overridden via config.
const (
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultLLMModel       = "mistral"
)

// OllamaClient talks to a local Ollama server over its HTTP API and
// implements both Embedder and Generator.
type OllamaClient struct {
	client         *http.Client
	baseURL        string
	embeddingModel string
	llmModel       string
}

type OllamaConfig struct {
	BaseURL        string
	EmbeddingModel string
	LLMModel       string
	Timeout        time.Duration
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOllamaURL
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 500 * time.Second
	}

	return &OllamaClient{
		client:         &http.Client{Timeout: cfg.Timeout},
		baseURL:        cfg.BaseURL,
		embeddingModel: cfg.EmbeddingModel,
		llmModel:       cfg.LLMModel,
	}
}

// Embed generates a vector embedding for the given text.
func (o *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp embedResponse
	err := o.post(ctx, "/api/embeddings", embedRequest{
		Model:  o.embeddingModel,
		Prompt: text,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

// Generate produces a completion for the prompt.
func (o *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	var resp generateResponse
	err := o.post(ctx, "/api/generate", generateRequest{
		Model:  o.llmModel,
		Prompt: prompt,
		Stream: false,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (o *OllamaClient) post(ctx context.Context, path string, body, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks that the Ollama server is reachable.
func (o *OllamaClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}
