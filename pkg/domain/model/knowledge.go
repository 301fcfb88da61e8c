package model

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimension matches the Gemini text-embedding-004 output size.
const EmbeddingDimension = 768

// KnowledgeID is a unique identifier for a knowledge document
type KnowledgeID string

// NewKnowledgeID generates a new unique knowledge ID
func NewKnowledgeID() KnowledgeID {
	return KnowledgeID(uuid.New().String())
}

// Knowledge is one user-scoped document in the local index. The local source
// adapter searches these by embedding similarity; results for one user must
// never surface another user's documents.
type Knowledge struct {
	ID        KnowledgeID `json:"id"`
	UserID    string      `json:"userId"`
	Title     string      `json:"title"`
	URL       string      `json:"url,omitempty"`
	Content   string      `json:"content"`
	Subject   string      `json:"subject,omitempty"`
	Embedding []float32   `json:"-"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
