// Package embcache is a read-through embedding cache backed by the key-value store.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

var cacheKeyPrefix = domain.KeyPrefix + "emb_cache:"

type store interface {
	// GetMulti returns one value per key, nil for missing keys.
	GetMulti(ctx context.Context, keys []string) ([][]byte, error)
	// SetWithTTL stores value; ttl <= 0 means no expiry.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config scopes cache entries and sets their lifetime.
type Config struct {
	Model      string
	Dimensions int           // 0 accepts any length
	TTL        time.Duration // <= 0 keeps entries forever
	// Lookups counts results by label "result" (hit, miss). Optional.
	Lookups *prometheus.CounterVec
}

// CachedEmbedder caches vectors by SHA-256 of the exact text sent to the provider.
// Keys carry model and dimensions so a config change never serves stale vectors.
// Concurrent misses for one text share a single provider call.
type CachedEmbedder struct {
	inner  domain.Embedder
	store  store
	cfg    Config
	prefix string
	flight singleflight.Group
	logger *zap.Logger
}

// New creates a caching decorator around inner.
func New(inner domain.Embedder, s store, cfg Config, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		store:  s,
		cfg:    cfg,
		prefix: cacheKeyPrefix + cfg.Model + ":" + strconv.Itoa(cfg.Dimensions) + ":",
		logger: logger,
	}
}

// flightResult is shared by every caller of one singleflight call.
// The first caller to collect it reports the tokens.
type flightResult struct {
	res     domain.EmbeddingResult
	claimed atomic.Bool
}

// Embed returns a cached embedding or calls the inner embedder.
// Concurrent misses for one text share a provider call that is detached from any
// single caller's cancellation; each caller stops waiting when its own ctx ends.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)
	if vecs := c.lookup(ctx, []string{key}); vecs[0] != nil {
		return domain.EmbeddingResult{Embedding: vecs[0]}, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(key, func() (any, error) {
		res, err := c.inner.Embed(shared, text)
		if err != nil {
			return nil, err //nolint:wrapcheck // wrapped below
		}
		c.put(shared, key, res.Embedding)
		return &flightResult{res: res}, nil
	})

	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", r.Err)
		}
		fr := r.Val.(*flightResult) //nolint:forcetypeassert // only type stored
		if !fr.claimed.CompareAndSwap(false, true) {
			return domain.EmbeddingResult{Embedding: fr.res.Embedding}, nil
		}
		return fr.res, nil
	}
}

// BatchEmbed reads all keys in one round trip and sends only the misses to the
// inner embedder, in one call. Output order matches texts.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = c.key(text)
	}
	out := domain.BatchEmbeddingResult{Embeddings: c.lookup(ctx, keys)}

	var (
		missIdx   []int
		missTexts []string
	)
	for i, vec := range out.Embeddings {
		if vec == nil {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := domain.EmbedAll(ctx, c.inner, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embed %d uncached texts: %w", len(missTexts), err)
	}
	for j, i := range missIdx {
		out.Embeddings[i] = fresh.Embeddings[j]
		c.put(ctx, keys[i], fresh.Embeddings[j])
	}
	out.PromptTokens = fresh.PromptTokens
	out.TotalTokens = fresh.TotalTokens
	return out, nil
}

// HealthCheck forwards to the inner embedder.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(h[:])
}

// lookup returns one vector per key, nil for misses. Store errors count as misses.
func (c *CachedEmbedder) lookup(ctx context.Context, keys []string) [][]float32 {
	vecs := make([][]float32, len(keys))

	raw, err := c.store.GetMulti(ctx, keys)
	if err != nil {
		c.logger.Warn("Embedding cache read failed", zap.Int("keys", len(keys)), zap.Error(err))
		raw = nil
	}
	for i := range keys {
		if i < len(raw) && raw[i] != nil {
			vecs[i] = c.decode(keys[i], raw[i])
		}
		c.count(vecs[i] != nil)
	}
	return vecs
}

func (c *CachedEmbedder) decode(key string, data []byte) []float32 {
	vec, err := decodeVector(data)
	if err == nil && c.cfg.Dimensions > 0 && len(vec) != c.cfg.Dimensions {
		err = fmt.Errorf("%d dimensions, want %d", len(vec), c.cfg.Dimensions)
	}
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil
	}
	return vec
}

// put is best effort: a failed write only costs a future miss.
func (c *CachedEmbedder) put(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}
	if err := c.store.SetWithTTL(ctx, key, encodeVector(vec), c.cfg.TTL); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedEmbedder) count(hit bool) {
	if c.cfg.Lookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cfg.Lookups.WithLabelValues(result).Inc()
}

// encodeVector packs float32s little-endian.
func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("corrupt vector of %d bytes", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
