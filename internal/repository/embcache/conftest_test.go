package embcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// stubEmbedder returns vec for every text and counts provider calls.
type stubEmbedder struct {
	vec       []float32
	tokens    int
	err       error
	gate      chan struct{} // when set, Embed blocks until it is closed or ctx ends
	calls     atomic.Int32
	batchSize []int
}

func (s *stubEmbedder) Embed(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
	s.calls.Add(1)
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return domain.EmbeddingResult{}, ctx.Err()
		}
	}
	if s.err != nil {
		return domain.EmbeddingResult{}, s.err
	}
	return domain.EmbeddingResult{Embedding: s.vec, PromptTokens: s.tokens, TotalTokens: s.tokens}, nil
}

func (s *stubEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	s.calls.Add(1)
	s.batchSize = append(s.batchSize, len(texts))
	if s.err != nil {
		return domain.BatchEmbeddingResult{}, s.err
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i := range texts {
		out.Embeddings[i] = s.vec
	}
	out.PromptTokens = s.tokens * len(texts)
	out.TotalTokens = s.tokens * len(texts)
	return out, nil
}

// memKV is an in-memory store. readErr and writeErr make the matching calls fail.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	reads    int
	readErr  error
	writeErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) GetMulti(_ context.Context, keys []string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out, nil
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func newCache(inner *stubEmbedder, kv *memKV, cfg Config) *CachedEmbedder {
	if cfg.Model == "" {
		cfg.Model = "test-model"
	}
	return New(inner, kv, cfg, zap.NewNop())
}

// seed stores vec under the key c uses for text.
func seed(t *testing.T, c *CachedEmbedder, kv *memKV, text string, vec []float32) {
	t.Helper()
	if err := kv.SetWithTTL(context.Background(), c.key(text), encodeVector(vec), 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
