package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Avinkovic23/local-llm-project/internal/index"
	"github.com/Avinkovic23/local-llm-project/internal/language"
	"github.com/Avinkovic23/local-llm-project/models"
)

// stubEmbedder produces deterministic vectors from the text bytes so
// retrieval is stable without a model server.
type stubEmbedder struct {
	fail atomic.Bool
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail.Load() {
		return nil, errors.New("embedding provider down")
	}
	vec := make([]float32, 8)
	for i := 0; i < len(text); i++ {
		vec[int(text[i])%8]++
	}
	return vec, nil
}

// stubGenerator records the last prompt it saw and echoes a canned answer.
type stubGenerator struct {
	fail  atomic.Bool
	calls atomic.Int64

	mu         sync.Mutex
	lastPrompt string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.calls.Add(1)
	if g.fail.Load() {
		return "", errors.New("model server down")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastPrompt = prompt
	return "generated answer", nil
}

func (g *stubGenerator) LastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastPrompt
}

// textLoader treats stored files as plain text, one chunk per file, so
// pipeline tests do not need real PDF fixtures.
type textLoader struct{}

func (textLoader) Load(name, path string) ([]models.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return []models.Chunk{{ChunkID: name + ":0", Document: name, Text: string(data)}}, nil
}

var testGate = language.NewGate()

func newTestPipeline(t *testing.T) (*Pipeline, *stubEmbedder, *stubGenerator) {
	t.Helper()
	store, err := NewDocumentStore(t.TempDir())
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	embedder := &stubEmbedder{}
	generator := &stubGenerator{}
	builder := index.NewBuilder(store, textLoader{}, embedder, 2)
	p := NewPipeline(context.Background(), store, builder, embedder, generator, testGate, 4)
	return p, embedder, generator
}

func ingestText(t *testing.T, p *Pipeline, name, content string) error {
	t.Helper()
	return p.Ingest(context.Background(), name, "application/pdf", strings.NewReader(content))
}

func TestAnswerBeforeAnyUpload(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	if p.Engine() != nil {
		t.Fatalf("expected no engine for an empty store")
	}

	_, err := p.Answer(context.Background(), "What is the capital of Croatia?")
	if !errors.Is(err, ErrNoIndex) {
		t.Fatalf("expected ErrNoIndex, got %v", err)
	}
}

func TestIngestRebuildsOverFullStore(t *testing.T) {
	p, _, generator := newTestPipeline(t)

	if err := ingestText(t, p, "a.pdf", "alpha document content"); err != nil {
		t.Fatalf("ingest a.pdf: %v", err)
	}
	if _, err := p.Answer(context.Background(), "What is the capital of Croatia?"); err != nil {
		t.Fatalf("answer after first upload: %v", err)
	}

	if err := ingestText(t, p, "b.pdf", "bravo document content"); err != nil {
		t.Fatalf("ingest b.pdf: %v", err)
	}

	docs := p.Engine().Index().Documents()
	if len(docs) != 2 {
		t.Fatalf("expected index over 2 documents, got %v", docs)
	}

	// With two chunks total and topK 4, the grounded prompt must draw
	// on content from both documents.
	if _, err := p.Answer(context.Background(), "What is the capital of Croatia?"); err != nil {
		t.Fatalf("answer after second upload: %v", err)
	}
	prompt := generator.LastPrompt()
	if !strings.Contains(prompt, "alpha document content") || !strings.Contains(prompt, "bravo document content") {
		t.Fatalf("grounded prompt missing content from both documents:\n%s", prompt)
	}
}

func TestIngestRejectsNonPDF(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	if err := ingestText(t, p, "a.pdf", "alpha"); err != nil {
		t.Fatalf("ingest a.pdf: %v", err)
	}
	before := p.Engine()

	err := p.Ingest(context.Background(), "notes.txt", "text/plain", strings.NewReader("plain text"))
	if !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}

	if p.Engine() != before {
		t.Fatalf("engine must not change on a rejected upload")
	}
	names, err := p.store.List()
	if err != nil {
		t.Fatalf("list store: %v", err)
	}
	if len(names) != 1 || names[0] != "a.pdf" {
		t.Fatalf("store must be unchanged, got %v", names)
	}
}

func TestFailedRebuildKeepsPreviousEngine(t *testing.T) {
	p, embedder, _ := newTestPipeline(t)

	if err := ingestText(t, p, "a.pdf", "alpha"); err != nil {
		t.Fatalf("ingest a.pdf: %v", err)
	}
	before := p.Engine()

	embedder.fail.Store(true)
	err := ingestText(t, p, "b.pdf", "bravo")
	if !errors.Is(err, ErrIndexBuild) {
		t.Fatalf("expected ErrIndexBuild, got %v", err)
	}
	embedder.fail.Store(false)

	if p.Engine() != before {
		t.Fatalf("engine must stay on the previous index after a failed rebuild")
	}
	if _, err := p.Answer(context.Background(), "pitanje o dokumentu"); err != nil {
		t.Fatalf("answer must keep working after a failed rebuild: %v", err)
	}
}

func TestConcurrentIngestsSerialize(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	const n = 6
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("doc-%d.pdf", i)
			errs[i] = ingestText(t, p, name, fmt.Sprintf("content of document %d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent ingest %d failed: %v", i, err)
		}
	}

	docs := p.Engine().Index().Documents()
	if len(docs) != n {
		t.Fatalf("final index must cover all %d documents, got %v", n, docs)
	}
}

func TestStartupBuildFromExistingStore(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(dir+"/preexisting.pdf", []byte("already here"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store, err := NewDocumentStore(dir)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	embedder := &stubEmbedder{}
	generator := &stubGenerator{}
	builder := index.NewBuilder(store, textLoader{}, embedder, 2)
	p := NewPipeline(context.Background(), store, builder, embedder, generator, testGate, 4)

	if p.Engine() == nil {
		t.Fatalf("expected startup build over a non-empty store")
	}
	if _, err := p.Answer(context.Background(), "What is already here?"); err != nil {
		t.Fatalf("answer against startup index: %v", err)
	}
}

func TestAnswerAppliesLanguageGate(t *testing.T) {
	p, _, generator := newTestPipeline(t)
	if err := ingestText(t, p, "a.pdf", "alpha"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, err := p.Answer(context.Background(), "What is the capital of Croatia?"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(generator.LastPrompt(), "Answer in English language ONLY.") {
		t.Fatalf("English question must carry the English instruction:\n%s", generator.LastPrompt())
	}

	if _, err := p.Answer(context.Background(), "Koji je glavni grad Hrvatske?"); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !strings.Contains(generator.LastPrompt(), "Answer in Croatian language ONLY.") {
		t.Fatalf("Croatian question must carry the Croatian instruction:\n%s", generator.LastPrompt())
	}
}

func TestAnswerSurfacesGeneratorFailure(t *testing.T) {
	p, _, generator := newTestPipeline(t)
	if err := ingestText(t, p, "a.pdf", "alpha"); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	generator.fail.Store(true)
	_, err := p.Answer(context.Background(), "What does the document say?")
	if err == nil {
		t.Fatal("expected a generation error")
	}
	if errors.Is(err, ErrNoIndex) {
		t.Fatalf("generation failure must not masquerade as a missing index: %v", err)
	}
	if got := generator.calls.Load(); got != 1 {
		t.Fatalf("generator must be called exactly once, got %d", got)
	}

	// A later question succeeds once the provider recovers.
	generator.fail.Store(false)
	if _, err := p.Answer(context.Background(), "What does the document say?"); err != nil {
		t.Fatalf("answer after recovery: %v", err)
	}
}
