package services

import (
	"context"
	"fmt"

	"github.com/Avinkovic23/local-llm-project/internal/ai"
	"github.com/Avinkovic23/local-llm-project/internal/index"
)

// QueryEngine binds one retrieval index to the embedding and generation
// providers. Engines are cheap, immutable bindings: a rebuild creates a
// new engine rather than mutating this one, so in-flight queries keep
// answering against the index they started with.
type QueryEngine struct {
	index     *index.Index
	embedder  ai.Embedder
	generator ai.Generator
	topK      int
}

func NewQueryEngine(ix *index.Index, embedder ai.Embedder, generator ai.Generator, topK int) *QueryEngine {
	if topK <= 0 {
		topK = 4
	}
	return &QueryEngine{
		index:     ix,
		embedder:  embedder,
		generator: generator,
		topK:      topK,
	}
}

// Query retrieves the topK chunks most similar to the prompt, builds a
// grounded prompt from them, and generates the answer. Responses are
// never cached; identical prompts recompute in full.
func (qe *QueryEngine) Query(ctx context.Context, prompt string) (string, error) {
	vector, err := qe.embedder.Embed(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	results := qe.index.Search(vector, qe.topK)
	contextChunks := make([]string, 0, len(results))
	for _, r := range results {
		contextChunks = append(contextChunks, r.Chunk.Text)
	}

	return qe.generator.Generate(ctx, buildPromptWithContext(prompt, contextChunks))
}

// Index exposes the bound retrieval index.
func (qe *QueryEngine) Index() *index.Index {
	return qe.index
}

// buildPromptWithContext grounds the user prompt in the retrieved chunks.
func buildPromptWithContext(prompt string, contextChunks []string) string {
	if len(contextChunks) == 0 {
		return prompt
	}

	contextStr := ""
	for i, chunk := range contextChunks {
		contextStr += fmt.Sprintf("Context %d:\n%s\n\n", i+1, chunk)
	}

	return fmt.Sprintf("Based on the following context:\n\n%s\n\nPlease answer this question: %s", contextStr, prompt)
}
