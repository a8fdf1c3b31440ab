package index

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Avinkovic23/local-llm-project/internal/ai"
	"github.com/Avinkovic23/local-llm-project/models"
)

// DocumentSource enumerates the documents an index is built from.
type DocumentSource interface {
	List() ([]string, error)
	Path(name string) string
}

// ChunkLoader loads one document and splits it into text chunks
// (embeddings not yet computed).
type ChunkLoader interface {
	Load(name, path string) ([]models.Chunk, error)
}

// Builder reconstructs the retrieval index from the complete document
// store. It never updates an index incrementally: every Build re-reads
// and re-embeds every document, so the result always reflects the full
// store contents at call time.
type Builder struct {
	source      DocumentSource
	loader      ChunkLoader
	embedder    ai.Embedder
	concurrency int
}

func NewBuilder(source DocumentSource, loader ChunkLoader, embedder ai.Embedder, concurrency int) *Builder {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Builder{
		source:      source,
		loader:      loader,
		embedder:    embedder,
		concurrency: concurrency,
	}
}

// Build returns (nil, nil) when the store is empty. Any failure to
// read, extract, or embed a single document fails the whole build; no
// partial index is ever produced.
func (b *Builder) Build(ctx context.Context) (*Index, error) {
	names, err := b.source.List()
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}

	var chunks []models.Chunk
	for _, name := range names {
		docChunks, err := b.loader.Load(name, b.source.Path(name))
		if err != nil {
			return nil, fmt.Errorf("load document %q: %w", name, err)
		}
		chunks = append(chunks, docChunks...)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i := range chunks {
		g.Go(func() error {
			vec, err := b.embedder.Embed(gctx, chunks[i].Text)
			if err != nil {
				return fmt.Errorf("embed chunk %s of %q: %w", chunks[i].ChunkID, chunks[i].Document, err)
			}
			chunks[i].Embedding = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return New(chunks, names), nil
}
