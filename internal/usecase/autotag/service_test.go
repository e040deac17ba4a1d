package autotag

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/kailas-cloud/lifeos/internal/domain"
)

// mapEmbedder returns a fixed vector per text; unknown texts get the zero vector.
type mapEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	dims    int
	calls   int
	err     error
}

func (m *mapEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v}, nil
	}
	return domain.EmbeddingResult{Embedding: make([]float32, m.dims)}, nil
}

type batchEmbedder struct {
	mapEmbedder
	batchFn func(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}

func (b *batchEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	return b.batchFn(ctx, texts)
}

const sample = "alpha beta gamma delta epsilon"

func TestSuggest_TopThreeDescending(t *testing.T) {
	emb := &mapEmbedder{dims: 2, vectors: map[string][]float32{
		sample:          {1, 0},
		"alpha":         {-1, 0},
		"beta":          {1, 2},
		"gamma":         {1, 0},
		"delta epsilon": {1, 1},
	}}

	got, err := New(emb).Suggest(context.Background(), sample)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"gamma", "delta epsilon", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestSuggest_DegenerateInput_NoEmbeddingCalls(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"four tokens", "went for a run"},
		{"only stop words", "the the the of of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := &mapEmbedder{dims: 2}
			got, err := New(emb).Suggest(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("expected empty non-nil tags, got %#v", got)
			}
			if emb.calls != 0 {
				t.Errorf("expected no embedding calls, got %d", emb.calls)
			}
		})
	}
}

func TestSuggest_FewerCandidatesThanTopN(t *testing.T) {
	// One content token survives stop-word removal.
	text := "coffee and the of or"
	emb := &mapEmbedder{dims: 2, vectors: map[string][]float32{
		text:     {1, 0},
		"coffee": {1, 0},
	}}

	got, err := New(emb).Suggest(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"coffee"}) {
		t.Errorf("tags = %v, want [coffee]", got)
	}
}

func TestSuggest_SingleBatch(t *testing.T) {
	var batches [][]string
	emb := &batchEmbedder{}
	emb.batchFn = func(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
		batches = append(batches, texts)
		out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
		for i := range texts {
			out.Embeddings[i] = []float32{1, float32(i)}
		}
		return out, nil
	}

	if _, err := New(emb).Suggest(context.Background(), sample); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected one batch call, got %d", len(batches))
	}
	if batches[0][0] != sample {
		t.Errorf("first text = %q, want the full text", batches[0][0])
	}
	if emb.calls != 0 {
		t.Errorf("single-text path used %d times", emb.calls)
	}
}

func TestSuggest_Errors(t *testing.T) {
	t.Run("provider", func(t *testing.T) {
		emb := &mapEmbedder{dims: 2, err: domain.ErrEmbeddingProviderError}
		_, err := New(emb).Suggest(context.Background(), sample)
		if !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
		}
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		emb := &mapEmbedder{dims: 2, vectors: map[string][]float32{sample: {1, 0, 0}}}
		_, err := New(emb).Suggest(context.Background(), sample)
		if !errors.Is(err, domain.ErrVectorDimMismatch) {
			t.Errorf("expected ErrVectorDimMismatch, got %v", err)
		}
	})
}
