package chi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	"github.com/kailas-cloud/lifeos/internal/domain/ranking"
	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
	domuser "github.com/kailas-cloud/lifeos/internal/domain/user"
	authuc "github.com/kailas-cloud/lifeos/internal/usecase/auth"
	exportuc "github.com/kailas-cloud/lifeos/internal/usecase/export"
	healthuc "github.com/kailas-cloud/lifeos/internal/usecase/health"
)

const testToken = "good-token"

var testUser = domuser.Reconstruct("u1", "g-1", "ana@example.com", "Ana", "", 0)

type mockAuth struct {
	signInIDTokenFn func(ctx context.Context, credential string) (authuc.Session, error)
	signInCodeFn    func(ctx context.Context, code string) (authuc.Session, error)
}

func (m *mockAuth) SignInWithIDToken(ctx context.Context, credential string) (authuc.Session, error) {
	return m.signInIDTokenFn(ctx, credential)
}

func (m *mockAuth) SignInWithCode(ctx context.Context, code string) (authuc.Session, error) {
	return m.signInCodeFn(ctx, code)
}

func (m *mockAuth) Authenticate(_ context.Context, token string) (domuser.User, error) {
	if token != testToken {
		return domuser.User{}, domain.ErrUnauthorized
	}
	return testUser, nil
}

// mockJournal embeds the interface so tests only stub what they call.
type mockJournal struct {
	JournalService
	createEntryFn func(ctx context.Context, userID string, in domjournal.EntryInput) (domjournal.Entry, error)
	getEntryFn    func(ctx context.Context, userID, id string) (domjournal.Entry, error)
	listEntriesFn func(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error)
	deleteEntryFn func(ctx context.Context, userID, id string) error
	createTaskFn  func(ctx context.Context, userID string, in domjournal.TaskInput) (domjournal.Task, error)
}

func (m *mockJournal) CreateEntry(ctx context.Context, userID string, in domjournal.EntryInput) (domjournal.Entry, error) {
	return m.createEntryFn(ctx, userID, in)
}

func (m *mockJournal) GetEntry(ctx context.Context, userID, id string) (domjournal.Entry, error) {
	return m.getEntryFn(ctx, userID, id)
}

func (m *mockJournal) ListEntries(ctx context.Context, userID string, limit int) ([]domjournal.Entry, error) {
	return m.listEntriesFn(ctx, userID, limit)
}

func (m *mockJournal) DeleteEntry(ctx context.Context, userID, id string) error {
	return m.deleteEntryFn(ctx, userID, id)
}

func (m *mockJournal) CreateTask(ctx context.Context, userID string, in domjournal.TaskInput) (domjournal.Task, error) {
	return m.createTaskFn(ctx, userID, in)
}

type mockSearcher struct {
	searchFn func(ctx context.Context, userID, query string) ([]ranking.Scored[domjournal.Entry], error)
}

func (m *mockSearcher) Search(ctx context.Context, userID, query string) ([]ranking.Scored[domjournal.Entry], error) {
	return m.searchFn(ctx, userID, query)
}

type mockTagger struct {
	suggestFn func(ctx context.Context, text string) ([]string, error)
}

func (m *mockTagger) Suggest(ctx context.Context, text string) ([]string, error) {
	return m.suggestFn(ctx, text)
}

type mockExporter struct {
	doc      exportuc.Document
	err      error
	atomBase string
}

func (m *mockExporter) Export(context.Context, string) (exportuc.Document, error) {
	return m.doc, m.err
}

func (m *mockExporter) WriteAtom(_ context.Context, _, baseURL string, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	m.atomBase = baseURL
	_, err := io.WriteString(w, "<feed></feed>")
	return err
}

type mockUsage struct {
	gotPeriod domusage.Period
}

func (m *mockUsage) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	m.gotPeriod = period
	return domusage.NewReport(period, "openai", 0, 1000, 40, 100, 60)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(context.Context) healthuc.Report { return m.report }

func newTestServer(deps Deps) http.Handler {
	if deps.Auth == nil {
		deps.Auth = &mockAuth{}
	}
	return NewServer(deps, "https://lifeos.test/", zap.NewNop()).Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func mustEntry(t *testing.T, id, title string) domjournal.Entry {
	t.Helper()
	e, err := domjournal.NewEntry(id, "u1", domjournal.EntryInput{Title: title},
		time.Date(2026, time.March, 7, 8, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	return e
}
