package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
)

// --- Mocks ---

type mockLister struct {
	entries []domjournal.Entry
	err     error
	calls   int
}

func (m *mockLister) ListEntries(_ context.Context, _ string, _ int) ([]domjournal.Entry, error) {
	m.calls++
	return m.entries, m.err
}

// conceptEmbedder maps every known word onto one concept axis. Texts sharing a concept
// point the same way; unrelated texts are orthogonal.
type conceptEmbedder struct {
	mu      sync.Mutex
	lexicon map[string]int
	dims    int
	calls   int
	err     error
}

func newConceptEmbedder() *conceptEmbedder {
	return &conceptEmbedder{
		dims: 3,
		lexicon: map[string]int{
			"run": 0, "ran": 0, "running": 0, "jog": 0, "jogging": 0, "park": 0, "exercise": 0,
			"outdoors": 0, "5k": 0,
			"work": 1, "meeting": 1, "roadmap": 1, "quarterly": 1, "budget": 1, "office": 1,
			"cake": 2, "dinner": 2, "cooked": 2,
		},
	}
}

func (c *conceptEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if c.err != nil {
		return domain.EmbeddingResult{}, c.err
	}
	vec := make([]float32, c.dims)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if axis, ok := c.lexicon[w]; ok {
			vec[axis]++
		}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

// batchingEmbedder records batch calls on top of a plain embedder.
type batchingEmbedder struct {
	*conceptEmbedder
	batches [][]string
}

func (b *batchingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	b.batches = append(b.batches, texts)
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := b.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
	}
	return out, nil
}

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

// --- Helpers ---

var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func entry(t *testing.T, id, title, content string) domjournal.Entry {
	t.Helper()
	e, err := domjournal.NewEntry(id, "u1", domjournal.EntryInput{Title: title, Content: content}, epoch)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}

// --- Tests ---

func TestSearch_RanksRelatedEntryFirst(t *testing.T) {
	lister := &mockLister{entries: []domjournal.Entry{
		entry(t, "work", "Work Meeting", "Discussed the quarterly roadmap at the office"),
		entry(t, "run", "Morning Run", "Ran 5k in the park"),
	}}
	emb := newConceptEmbedder()
	svc := New(lister, emb, emb)

	got, err := svc.Search(context.Background(), "u1", "running exercise")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result above threshold, got %d", len(got))
	}
	if got[0].Item.Title() != "Morning Run" {
		t.Errorf("top result = %q, want Morning Run", got[0].Item.Title())
	}
	if got[0].Item.Content() != "Ran 5k in the park" {
		t.Errorf("result lost its fields: %+v", got[0].Item)
	}
}

func TestSearch_ExerciseOutdoorsFindsMorningRun(t *testing.T) {
	lister := &mockLister{entries: []domjournal.Entry{
		entry(t, "run", "Morning Run", "Went jogging in the park"),
		entry(t, "work", "Work Meeting", "Discussed quarterly budget"),
	}}
	emb := newConceptEmbedder()
	svc := New(lister, emb, emb)

	got, err := svc.Search(context.Background(), "u1", "exercise outdoors")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected only Morning Run above threshold, got %d results", len(got))
	}
	if got[0].Item.Title() != "Morning Run" {
		t.Errorf("top result = %q, want Morning Run", got[0].Item.Title())
	}
	if got[0].Score <= MinScore {
		t.Errorf("score %f not above %f", got[0].Score, MinScore)
	}
}

func TestSearch_EmptyCorpus_NoEmbeddingCalls(t *testing.T) {
	emb := newConceptEmbedder()
	svc := New(&mockLister{}, emb, emb)

	got, err := svc.Search(context.Background(), "u1", "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
	if emb.calls != 0 {
		t.Errorf("expected no embedding calls, got %d", emb.calls)
	}
}

func TestSearch_BlankQuery(t *testing.T) {
	lister := &mockLister{}
	emb := newConceptEmbedder()
	svc := New(lister, emb, emb)

	for _, q := range []string{"", "   \t\n"} {
		_, err := svc.Search(context.Background(), "u1", q)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Search(%q) err = %v, want ErrInvalidInput", q, err)
		}
	}
	if lister.calls != 0 || emb.calls != 0 {
		t.Errorf("blank query must not touch storage or provider")
	}
}

func TestSearch_TopKAndThreshold(t *testing.T) {
	var corpus []domjournal.Entry
	for i := range 8 {
		corpus = append(corpus, entry(t, fmt.Sprintf("r%d", i), "Run", "jog in the park"))
	}
	corpus = append(corpus, entry(t, "cake", "Cake", "cooked dinner"))
	emb := newConceptEmbedder()
	svc := New(&mockLister{entries: corpus}, emb, emb)

	got, err := svc.Search(context.Background(), "u1", "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != TopK {
		t.Fatalf("expected %d results, got %d", TopK, len(got))
	}
	for _, r := range got {
		if r.Score <= MinScore {
			t.Errorf("result %s has score %f <= %f", r.Item.ID(), r.Score, MinScore)
		}
		if r.Item.ID() == "cake" {
			t.Error("unrelated entry returned")
		}
	}
}

func TestSearch_TiesKeepListingOrder(t *testing.T) {
	corpus := []domjournal.Entry{
		entry(t, "a", "Run", "park"),
		entry(t, "b", "Run", "park"),
		entry(t, "c", "Run", "park"),
	}
	emb := newConceptEmbedder()
	svc := New(&mockLister{entries: corpus}, emb, emb)

	got, err := svc.Search(context.Background(), "u1", "run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.Item.ID())
	}
	if strings.Join(ids, ",") != "a,b,c" {
		t.Errorf("tie order = %v, want a,b,c", ids)
	}
}

func TestSearch_Idempotent(t *testing.T) {
	corpus := []domjournal.Entry{
		entry(t, "run", "Morning Run", "Ran in the park"),
		entry(t, "work", "Work Meeting", "roadmap and a short jog"),
	}
	emb := newConceptEmbedder()
	svc := New(&mockLister{entries: corpus}, emb, emb)

	first, err := svc.Search(context.Background(), "u1", "park run")
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := svc.Search(context.Background(), "u1", "park run")
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("result count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Item.ID() != second[i].Item.ID() || first[i].Score != second[i].Score {
			t.Errorf("result %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSearch_UsesBatchForCorpus(t *testing.T) {
	corpus := []domjournal.Entry{
		entry(t, "a", "Run", "park"),
		entry(t, "b", "Work", "meeting"),
	}
	emb := &batchingEmbedder{conceptEmbedder: newConceptEmbedder()}
	svc := New(&mockLister{entries: corpus}, emb, emb)

	if _, err := svc.Search(context.Background(), "u1", "run"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb.batches) != 1 {
		t.Fatalf("expected one batch call, got %d", len(emb.batches))
	}
	if emb.batches[0][0] != "Run park" || emb.batches[0][1] != "Work meeting" {
		t.Errorf("embedded texts = %q", emb.batches[0])
	}
}

func TestSearch_DimensionMismatch(t *testing.T) {
	corpus := []domjournal.Entry{entry(t, "a", "Run", "park")}
	svc := New(&mockLister{entries: corpus}, newConceptEmbedder(), &fixedEmbedder{vec: []float32{1, 0}})

	_, err := svc.Search(context.Background(), "u1", "run")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestSearch_ErrorsPropagate(t *testing.T) {
	corpus := []domjournal.Entry{entry(t, "a", "Run", "park")}

	t.Run("storage", func(t *testing.T) {
		storeErr := errors.New("connection refused")
		emb := newConceptEmbedder()
		_, err := New(&mockLister{err: storeErr}, emb, emb).Search(context.Background(), "u1", "run")
		if !errors.Is(err, storeErr) {
			t.Errorf("expected storage error, got %v", err)
		}
	})

	t.Run("provider", func(t *testing.T) {
		emb := newConceptEmbedder()
		emb.err = domain.ErrEmbeddingUnavailable
		_, err := New(&mockLister{entries: corpus}, emb, emb).Search(context.Background(), "u1", "run")
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
		}
	})
}

func TestSearch_RecordsTokenUsage(t *testing.T) {
	corpus := []domjournal.Entry{entry(t, "a", "Run", "park"), entry(t, "b", "Work", "meeting")}
	emb := newConceptEmbedder()
	ctx, usage := domain.NewContextWithUsage(context.Background())

	if _, err := New(&mockLister{entries: corpus}, emb, emb).Search(ctx, "u1", "run"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// One token per embedded text: two entries plus the query.
	if usage.TotalTokens() != 3 {
		t.Errorf("tokens = %d, want 3", usage.TotalTokens())
	}
}
