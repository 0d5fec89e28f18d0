package models

import "github.com/google/uuid"

// ChatRequest is the body of a chat question.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatSource describes one source document used in a RAG answer.
type ChatSource struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Region         string    `json:"region,omitempty"`
	Relevance      float64   `json:"relevance"`
	ContentSnippet string    `json:"contentSnippet,omitempty"`
}

// ChatResponse is the answer to a chat question. It is always well-formed:
// internal failures surface through Error and a fallback Answer, never as a
// transport-level error.
type ChatResponse struct {
	Answer           string       `json:"answer"`
	Sources          []ChatSource `json:"sources"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
	UsedRag          bool         `json:"usedRag"`
	Error            string       `json:"error,omitempty"`
}

// ChatStatus reports availability of the chat service and its backends.
type ChatStatus struct {
	IsAvailable         bool   `json:"isAvailable"`
	EmbeddingsAvailable bool   `json:"embeddingsAvailable"`
	LlmAvailable        bool   `json:"llmAvailable"`
	IndexedObjectsCount int64  `json:"indexedObjectsCount"`
	ModelName           string `json:"modelName,omitempty"`
	Error               string `json:"error,omitempty"`
}

// SearchResultItem is a transient nearest-neighbor hit from one corpus.
// Distance is cosine distance: lower means more similar.
type SearchResultItem struct {
	SourceID      uuid.UUID
	Content       string
	ContentType   string
	SourceName    string
	SourceRegion  string
	Distance      float64
	IsWaterObject bool
}

// RagSearchResult bundles the merged retrieval output for one query.
type RagSearchResult struct {
	Context string       `json:"context"`
	Sources []ChatSource `json:"sources"`
}

// HasRelevantContext reports whether any source survived the relevance floor.
func (r *RagSearchResult) HasRelevantContext() bool {
	return len(r.Sources) > 0
}

// AverageRelevance is the mean relevance over sources, 0 when empty.
func (r *RagSearchResult) AverageRelevance() float64 {
	if len(r.Sources) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.Sources {
		sum += s.Relevance
	}
	return sum / float64(len(r.Sources))
}
