package models

// Chunk represents a text segment extracted from one stored document,
// paired with its embedding vector. Chunks are recomputed in full on
// every index rebuild and are never persisted on their own.
type Chunk struct {
	ChunkID   string    `json:"chunk_id"`
	Document  string    `json:"document"` // source filename within the docs directory
	Text      string    `json:"text"`
	Order     int       `json:"order"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

type AnswerResponse struct {
	Response string `json:"response"`
}

type UploadResponse struct {
	Message string `json:"message"`
}
