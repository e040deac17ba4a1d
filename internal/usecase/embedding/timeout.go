package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/lifeos/internal/domain"
	"github.com/kailas-cloud/lifeos/internal/metrics"
)

// DefaultTimeout bounds a single embedding call, batch or not.
const DefaultTimeout = 10 * time.Second

// TimeoutEmbedder bounds every call to the inner embedder. A call that runs out of
// time fails with domain.ErrEmbeddingUnavailable instead of hanging the request.
type TimeoutEmbedder struct {
	inner   domain.Embedder
	timeout time.Duration
}

// NewTimeoutEmbedder wraps inner. A non-positive timeout falls back to DefaultTimeout.
func NewTimeoutEmbedder(inner domain.Embedder, timeout time.Duration) *TimeoutEmbedder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TimeoutEmbedder{inner: inner, timeout: timeout}
}

// Embed vectorizes text within the configured timeout.
func (t *TimeoutEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := t.inner.Embed(callCtx, text)
	if err != nil {
		return domain.EmbeddingResult{}, t.mapErr(ctx, callCtx, err)
	}
	return res, nil
}

// BatchEmbed vectorizes texts within the configured timeout.
func (t *TimeoutEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	res, err := domain.EmbedAll(callCtx, t.inner, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, t.mapErr(ctx, callCtx, err)
	}
	return res, nil
}

// HealthCheck forwards to the inner embedder.
func (t *TimeoutEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := t.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

// mapErr turns our own deadline into ErrEmbeddingUnavailable. Caller cancellation
// and provider errors pass through unchanged.
func (t *TimeoutEmbedder) mapErr(parent, callCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		metrics.EmbeddingTimeoutsTotal.Inc()
		return fmt.Errorf("embedding timed out after %s: %w", t.timeout, domain.ErrEmbeddingUnavailable)
	}
	return err
}
