// Package index holds the in-memory retrieval index and its builder.
// An Index is immutable once built; rebuilds produce a fresh Index that
// the owner swaps in atomically.
package index

import (
	"math"
	"sort"

	"github.com/Avinkovic23/local-llm-project/models"
)

// SearchResult is a matching chunk with its cosine similarity score.
type SearchResult struct {
	Chunk models.Chunk
	Score float64
}

// Index supports nearest-neighbour lookup over all chunks of all
// documents present in the store at build time.
type Index struct {
	chunks    []models.Chunk
	vectors   [][]float32 // L2-normalized copies of the chunk embeddings
	documents []string
}

// New assembles an index over the given chunks. Embeddings are
// normalized up front so search reduces to a dot product.
func New(chunks []models.Chunk, documents []string) *Index {
	vectors := make([][]float32, len(chunks))
	for i, c := range chunks {
		vectors[i] = normalize(c.Embedding)
	}
	return &Index{
		chunks:    chunks,
		vectors:   vectors,
		documents: documents,
	}
}

// Search returns the topK chunks most similar to the query vector.
func (ix *Index) Search(vector []float32, topK int) []SearchResult {
	if topK <= 0 {
		topK = 4
	}

	query := normalize(vector)
	results := make([]SearchResult, 0, len(ix.vectors))
	for i := range ix.vectors {
		results = append(results, SearchResult{
			Chunk: ix.chunks[i],
			Score: dot(ix.vectors[i], query),
		})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Documents returns the filenames the index was built from.
func (ix *Index) Documents() []string {
	return ix.documents
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
