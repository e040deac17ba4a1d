package autotag

import (
	"context"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// Embedder vectorizes the text and its candidate phrases.
// Implementations that also satisfy domain.BatchEmbedder get one call per request.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
