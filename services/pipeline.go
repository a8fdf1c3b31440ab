package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Avinkovic23/local-llm-project/internal/ai"
	"github.com/Avinkovic23/local-llm-project/internal/index"
	"github.com/Avinkovic23/local-llm-project/internal/language"
	"github.com/Avinkovic23/local-llm-project/internal/logger"
)

var (
	// ErrNoIndex means no documents have been uploaded yet; the caller
	// should surface NoIndexMessage to the user.
	ErrNoIndex = errors.New("no retrieval index available")

	// ErrUnsupportedMedia is returned for non-PDF uploads.
	ErrUnsupportedMedia = errors.New("only PDF files are allowed")

	// ErrIndexBuild wraps rebuild failures. The previously active engine
	// stays in place when this is returned.
	ErrIndexBuild = errors.New("index rebuild failed")
)

// NoIndexMessage is the user-facing text for ErrNoIndex.
const NoIndexMessage = "Nema dokumenta za pretraživanje. Molimo učitajte PDF datoteku."

// Pipeline is the answering pipeline: it owns the active query engine
// reference, the language gate, and the rebuild-on-upload policy.
//
// Reads of the engine are lock-free; an answer captures whichever engine
// is active when it starts and keeps it across any concurrent swap.
// Rebuilds serialize on rebuildMu so two uploads can never interleave
// "enumerate store, build, swap" and install stale state.
type Pipeline struct {
	store     *DocumentStore
	builder   *index.Builder
	embedder  ai.Embedder
	generator ai.Generator
	gate      *language.Gate
	topK      int

	engine    atomic.Pointer[QueryEngine]
	rebuildMu sync.Mutex
}

// NewPipeline builds the initial index from whatever the document store
// already holds. An empty store starts with no engine; a failing startup
// build is logged and also starts with no engine, so the service comes
// up and answers with ErrNoIndex until a successful upload.
func NewPipeline(ctx context.Context, store *DocumentStore, builder *index.Builder, embedder ai.Embedder, generator ai.Generator, gate *language.Gate, topK int) *Pipeline {
	p := &Pipeline{
		store:     store,
		builder:   builder,
		embedder:  embedder,
		generator: generator,
		gate:      gate,
		topK:      topK,
	}

	ix, err := builder.Build(ctx)
	if err != nil {
		logger.Error("Startup index build failed; starting without an index", "error", err)
		return p
	}
	if ix != nil {
		p.engine.Store(NewQueryEngine(ix, embedder, generator, topK))
		logger.Info("Initial index built", "documents", len(ix.Documents()), "chunks", ix.Len())
	}
	return p
}

// Ingest persists the document and rebuilds the index over the entire
// store. The content type must be application/pdf; the check runs before
// any side effect, so a rejected upload leaves both the store and the
// active engine untouched.
func (p *Pipeline) Ingest(ctx context.Context, filename, contentType string, r io.Reader) error {
	if contentType != "application/pdf" {
		return ErrUnsupportedMedia
	}

	p.rebuildMu.Lock()
	defer p.rebuildMu.Unlock()

	if err := p.store.Save(filename, r); err != nil {
		return fmt.Errorf("persist document: %w", err)
	}

	ix, err := p.builder.Build(ctx)
	if err != nil {
		// Keep the previous engine so one bad document does not take
		// the whole service offline.
		return fmt.Errorf("%w: %v", ErrIndexBuild, err)
	}
	if ix == nil {
		return fmt.Errorf("%w: store empty after upload", ErrIndexBuild)
	}

	p.engine.Store(NewQueryEngine(ix, p.embedder, p.generator, p.topK))
	logger.Info("Index rebuilt", "documents", len(ix.Documents()), "chunks", ix.Len())
	return nil
}

// Answer classifies the question's language, wraps it in the matching
// language instruction, and delegates to the active query engine.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	engine := p.engine.Load()
	if engine == nil {
		return "", ErrNoIndex
	}

	enforced := p.gate.Enforce(question)
	return engine.Query(ctx, enforced)
}

// Engine returns the currently active query engine, or nil when the
// store is empty. Exposed for tests asserting swap semantics.
func (p *Pipeline) Engine() *QueryEngine {
	return p.engine.Load()
}
