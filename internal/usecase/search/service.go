// Package search ranks a user's journal entries against a free-text query.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	"github.com/kailas-cloud/lifeos/internal/domain/ranking"
	"github.com/kailas-cloud/lifeos/internal/metrics"
)

const (
	// TopK caps the number of entries returned.
	TopK = 5
	// MinScore is the exclusive similarity threshold.
	MinScore = 0.2

	pipelineName = "search"
)

// Service runs the semantic search pipeline.
type Service struct {
	entries EntryLister
	corpus  Embedder
	query   Embedder
}

// New creates a search service. corpus and query may be the same embedder; they differ
// only when the model wants distinct passage and query instructions.
func New(entries EntryLister, corpus, query Embedder) *Service {
	return &Service{entries: entries, corpus: corpus, query: query}
}

// Search returns at most TopK of the user's entries scoring strictly above MinScore,
// best first. Ties keep the listing order (newest first).
func (s *Service) Search(ctx context.Context, userID, query string) (_ []ranking.Scored[domjournal.Entry], err error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "must not be empty")
	}

	start := time.Now()
	defer func() { metrics.ObservePipeline(pipelineName, start, err) }()

	corpus, err := s.entries.ListEntries(ctx, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	metrics.PipelineCorpusSize.Observe(float64(len(corpus)))

	results, err := Rank(ctx, s.corpus, s.query, query, corpus, (*domjournal.Entry).SearchText)
	if err != nil {
		return nil, err
	}
	metrics.PipelineResults.WithLabelValues(pipelineName).Observe(float64(len(results)))
	return results, nil
}

// Rank embeds every record and the query, then keeps the TopK records above MinScore.
// An empty corpus returns an empty slice without calling either embedder.
func Rank[T any](
	ctx context.Context, corpusEmb, queryEmb Embedder, query string, corpus []T, text func(*T) string,
) ([]ranking.Scored[T], error) {
	if len(corpus) == 0 {
		return []ranking.Scored[T]{}, nil
	}

	texts := make([]string, len(corpus))
	for i := range corpus {
		texts[i] = text(&corpus[i])
	}

	docs, err := domain.EmbedAll(ctx, corpusEmb, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	q, err := queryEmb.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(docs.TotalTokens + q.TotalTokens)

	scores, err := ranking.Scores(q.Embedding, docs.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("score corpus: %w", err)
	}

	scored := ranking.Zip(corpus, scores)
	ranking.SortDesc(scored)
	return ranking.TopK(ranking.Above(scored, MinScore), TopK), nil
}
