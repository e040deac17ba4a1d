// Package autotag proposes tags for free text by ranking its own key phrases
// against the embedding of the whole text.
package autotag

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
	"github.com/kailas-cloud/lifeos/internal/domain/keyphrase"
	"github.com/kailas-cloud/lifeos/internal/domain/ranking"
	"github.com/kailas-cloud/lifeos/internal/metrics"
)

const (
	// MaxCandidates caps the phrases extracted before ranking.
	MaxCandidates = 20
	// TopN is the number of tags returned.
	TopN = 3

	pipelineName = "autotag"
)

// Service runs the auto-tag pipeline.
type Service struct {
	embed Embedder
}

// New creates an auto-tag service.
func New(embed Embedder) *Service {
	return &Service{embed: embed}
}

// Suggest returns up to TopN candidate phrases of text, most similar to the text first.
// Text with fewer than five tokens, or nothing but stop words, yields an empty slice
// without calling the embedder.
func (s *Service) Suggest(ctx context.Context, text string) (_ []string, err error) {
	start := time.Now()
	defer func() { metrics.ObservePipeline(pipelineName, start, err) }()

	candidates := keyphrase.Extract(text, MaxCandidates)
	if len(candidates) == 0 {
		metrics.PipelineResults.WithLabelValues(pipelineName).Observe(0)
		return []string{}, nil
	}

	// The text goes first so the whole request is one batch.
	res, err := domain.EmbedAll(ctx, s.embed, append([]string{text}, candidates...))
	if err != nil {
		return nil, fmt.Errorf("embed candidates: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	scores, err := ranking.Scores(res.Embeddings[0], res.Embeddings[1:])
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	scored := ranking.Zip(candidates, scores)
	ranking.SortDesc(scored)
	top := ranking.TopK(scored, TopN)

	tags := make([]string, len(top))
	for i, c := range top {
		tags[i] = c.Item
	}
	metrics.PipelineResults.WithLabelValues(pipelineName).Observe(float64(len(tags)))
	return tags, nil
}
