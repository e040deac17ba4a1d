package search

import (
	"context"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

// EntryLister reads the corpus: the requesting user's own entries.
type EntryLister interface {
	ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error)
}

// Embedder vectorizes text into embeddings.
// Implementations that also satisfy domain.BatchEmbedder get one call per request.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
