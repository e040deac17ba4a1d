package chi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/domain"
	domjournal "github.com/kailas-cloud/lifeos/internal/domain/journal"
	"github.com/kailas-cloud/lifeos/internal/domain/ranking"
	domusage "github.com/kailas-cloud/lifeos/internal/domain/usage"
	logpkg "github.com/kailas-cloud/lifeos/internal/logger"
)

type searchRequest struct {
	Query string `json:"query"`
}

type autotagRequest struct {
	Content string `json:"content"`
}

type autotagResponse struct {
	Tags []string `json:"tags"`
}

// Search handles POST /search/. The response is the matching entries, best first.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	hits, err := s.searcher.Search(ctx, currentUserID(r), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, mapSlice(hits, func(h *ranking.Scored[domjournal.Entry]) entryResponse {
		return toEntryResponse(&h.Item)
	}))
}

// Autotag handles POST /autotag/.
func (s *Server) Autotag(w http.ResponseWriter, r *http.Request) {
	var req autotagRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	tags, err := s.tagger.Suggest(ctx, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, autotagResponse{Tags: nonNil(tags)})
}

// ExportJSON handles GET /export/json and serves the export as a download.
func (s *Server) ExportJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := s.exporter.Export(r.Context(), currentUserID(r))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	filename := fmt.Sprintf("lifeos-export-%s.json", doc.ExportedAt.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		logpkg.FromContext(r.Context()).Warn("write export", zap.Error(err))
	}
}

// ExportAtom handles GET /export/feed.atom.
func (s *Server) ExportAtom(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.exporter.WriteAtom(r.Context(), currentUserID(r), s.publicURL, &buf); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetUsage handles GET /usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	var raw string
	if !queryParam(w, r, "period", &raw) {
		return
	}
	period, err := domusage.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, toUsageResponse(&report))
}

// Connect handles GET /ws/{client_id} by upgrading to a WebSocket on the broadcast hub.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	clientID, ok := pathParam(w, r, "client_id")
	if !ok {
		return
	}
	// The upgrader has already answered the client when Serve fails.
	if err := s.hub.Serve(w, r, clientID); err != nil {
		logpkg.FromContext(r.Context()).Warn("websocket connect failed",
			zap.String("client_id", clientID),
			zap.Error(err),
		)
	}
}
