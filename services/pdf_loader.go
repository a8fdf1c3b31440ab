package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/Avinkovic23/local-llm-project/models"
)

// PDFLoader extracts text from stored PDF documents and splits it into
// overlapping word-window chunks ready for embedding.
type PDFLoader struct {
	maxChunkSize int // words per chunk
	overlap      int // words shared between consecutive chunks
}

func NewPDFLoader(maxChunkSize, overlap int) *PDFLoader {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 200
	}
	return &PDFLoader{maxChunkSize: maxChunkSize, overlap: overlap}
}

// Load extracts and chunks one document. Any page that cannot be read
// fails the whole document; the index builder treats that as a failed
// build and keeps the previous index.
func (l *PDFLoader) Load(name, path string) ([]models.Chunk, error) {
	text, err := l.ExtractText(path)
	if err != nil {
		return nil, err
	}
	return l.CreateChunks(name, text), nil
}

// ExtractText reads the PDF at path page by page.
func (l *PDFLoader) ExtractText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i, err)
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n")
	}

	extracted := strings.TrimSpace(textBuilder.String())
	if extracted == "" {
		return "", fmt.Errorf("no text extracted from pdf")
	}
	return extracted, nil
}

// CreateChunks splits text into word windows with overlap.
func (l *PDFLoader) CreateChunks(document, text string) []models.Chunk {
	words := strings.Fields(text)

	var chunks []models.Chunk
	for i := 0; i < len(words); {
		end := i + l.maxChunkSize
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, models.Chunk{
			ChunkID:  uuid.NewString(),
			Document: document,
			Text:     strings.Join(words[i:end], " "),
			Order:    len(chunks),
		})

		if end >= len(words) {
			break
		}

		// Move forward with overlap
		nextStart := end - l.overlap
		if nextStart <= i {
			nextStart = i + 1
		}
		i = nextStart
	}

	return chunks
}
