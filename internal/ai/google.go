package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleClient is the hosted alternative to the local Ollama provider,
// backed by the Google Generative AI API.
type GoogleClient struct {
	client         *genai.Client
	embeddingModel string
	llmModel       string
}

func NewGoogleClient(ctx context.Context, apiKey, embeddingModel, llmModel string) (*GoogleClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for google provider")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}
	if llmModel == "" {
		llmModel = "gemini-2.0-flash"
	}

	return &GoogleClient{
		client:         client,
		embeddingModel: embeddingModel,
		llmModel:       llmModel,
	}, nil
}

func (g *GoogleClient) Embed(ctx context.Context, text string) ([]float32, error) {
	model := g.client.EmbeddingModel(g.embeddingModel)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding.Values, nil
}

func (g *GoogleClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.llmModel)
	model.SetTemperature(0.7)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response generated")
	}

	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text += string(t)
		}
	}
	return text, nil
}

func (g *GoogleClient) Close() error {
	return g.client.Close()
}
