package models

import "strings"

// QuestionRequest is the body accepted by /query and /chat.
type QuestionRequest struct {
	Question string `json:"question"`
}

// Validate trims the question and rejects it when nothing is left.
func (q *QuestionRequest) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// QueryResult is one retrieved chunk as returned to the caller. Score is nil when
// the underlying store does not report a distance.
type QueryResult struct {
	Content    string   `json:"content"`
	Source     string   `json:"source"`
	Section    string   `json:"section"`
	ChunkIndex int      `json:"chunk_index"`
	Score      *float64 `json:"score"`
}

// Metadata returns the source/section/ordinal triple of the result.
func (r *QueryResult) Metadata() ChunkMetadata {
	return ChunkMetadata{
		Source:     r.Source,
		Section:    r.Section,
		ChunkIndex: r.ChunkIndex,
	}
}

// QueryResponse is the response for POST /query.
type QueryResponse struct {
	Question  string         `json:"question"`
	TopChunks []*QueryResult `json:"top_chunks"`
}

// ChatResponse is the response for POST /chat.
type ChatResponse struct {
	Question string          `json:"question"`
	Reply    string          `json:"reply"`
	Sources  []ChunkMetadata `json:"sources"`
}

// Health statuses.
const (
	StatusHealthy = "healthy"
	StatusError   = "error"
)

// HealthReport is the response for GET /health.
type HealthReport struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	Source          string `json:"source,omitempty"`
	Documents       int64  `json:"documents,omitempty"`
	Sections        int    `json:"sections,omitempty"`
	Chunks          int64  `json:"chunks,omitempty"`
	VectorIndexSize int    `json:"vector_index_size,omitempty"`
	KeywordDocs     uint64 `json:"keyword_index_size,omitempty"`
	RetrievalMode   string `json:"retrieval_mode,omitempty"`
	IndexPath       string `json:"index_path,omitempty"`
	DiskUsageBytes  *int64 `json:"disk_usage_bytes,omitempty"`
}
