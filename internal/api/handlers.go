// Package api exposes the tutoring assistant over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"edututor/internal/adapter/fs"
	"edututor/internal/domain"
	"edututor/internal/port"
	"edututor/internal/usecase"
)

// Handler holds the dependencies for HTTP handlers.
type Handler struct {
	ingest   *usecase.IngestUseCase
	retrieve *usecase.RetrieveUseCase
	chat     *usecase.ChatUseCase
	index    port.VectorIndex
	model    string
}

// NewHandler creates a Handler over the assembled use cases.
func NewHandler(ingest *usecase.IngestUseCase, retrieve *usecase.RetrieveUseCase, chat *usecase.ChatUseCase, index port.VectorIndex, model string) *Handler {
	return &Handler{
		ingest:   ingest,
		retrieve: retrieve,
		chat:     chat,
		index:    index,
		model:    model,
	}
}

type ingestRequest struct {
	Path     string   `json:"path"`
	Excludes []string `json:"excludes,omitempty"`
}

type ingestResponse struct {
	FilesIngested int      `json:"files_ingested"`
	ChunksIndexed int      `json:"chunks_indexed"`
	Warnings      []string `json:"warnings,omitempty"`
}

// HandleIngest handles POST /api/ingest requests.
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Path == "" {
		sendError(w, http.StatusBadRequest, "path is required")
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil || !info.IsDir() {
		sendError(w, http.StatusBadRequest, "path is not a directory: "+req.Path)
		return
	}

	files, err := fs.NewWalker(nil, req.Excludes).Walk(req.Path)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to scan documents: "+err.Error())
		return
	}

	result, err := h.ingest.Ingest(files, nil)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "ingestion failed: "+err.Error())
		return
	}

	sendJSON(w, http.StatusOK, ingestResponse{
		FilesIngested: result.FilesIngested,
		ChunksIndexed: result.ChunksIndexed,
		Warnings:      result.Warnings,
	})
}

type queryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

type queryHit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Text  string  `json:"text"`
}

// HandleQuery handles POST /api/query requests.
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		sendError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = 5
	}

	hits, err := h.retrieve.Retrieve(req.Query, req.TopK)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "retrieval failed: "+err.Error())
		return
	}

	out := make([]queryHit, len(hits))
	for i, hit := range hits {
		out[i] = queryHit{ID: hit.Metadata.ID, Score: hit.Score, Text: hit.Metadata.Text}
	}
	sendJSON(w, http.StatusOK, map[string]any{"hits": out})
}

type askRequest struct {
	Question string `json:"question"`
	Mode     string `json:"mode,omitempty"` // "concise" (default) or "detailed"
}

type askDone struct {
	Sources    []string           `json:"sources,omitempty"`
	WebResults []domain.WebResult `json:"web_results,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// HandleAsk handles POST /api/ask requests. The answer is streamed as
// server-sent events: each fragment arrives as a data event, and a
// final "done" event carries the cited sources.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		sendError(w, http.StatusBadRequest, "question is required")
		return
	}

	mode := domain.ModeConcise
	if strings.EqualFold(req.Mode, "detailed") {
		mode = domain.ModeDetailed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		sendError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	answer, err := h.chat.Ask(r.Context(), req.Question, mode, func(fragment string) {
		for _, line := range strings.Split(fragment, "\n") {
			fmt.Fprintf(w, "data: %s\n", line)
		}
		fmt.Fprint(w, "\n")
		flusher.Flush()
	})

	done := askDone{}
	if answer != nil {
		done.Sources = answer.Sources
		done.WebResults = answer.WebResults
	}
	if err != nil {
		done.Error = err.Error()
		// The fallback text was never streamed; deliver it as a fragment
		// so clients still render an answer.
		if answer != nil && answer.Text != "" {
			fmt.Fprintf(w, "data: %s\n\n", answer.Text)
		}
	}

	payload, _ := json.Marshal(done)
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
	flusher.Flush()
}

// HandleStats handles GET /api/stats requests.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{
		"chunks":    h.index.Count(),
		"dimension": h.index.Dimension(),
		"model":     h.model,
	})
}

// HandleHistory handles GET /api/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chat.History()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to load history: "+err.Error())
		return
	}
	sendJSON(w, http.StatusOK, map[string]any{"turns": turns})
}

// HandleHistoryClear handles POST /api/history/clear requests.
func (h *Handler) HandleHistoryClear(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.ClearHistory(); err != nil {
		sendError(w, http.StatusInternalServerError, "failed to clear history: "+err.Error())
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"chunks": h.index.Count(),
	})
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, status int, msg string) {
	sendJSON(w, status, map[string]string{"error": msg})
}
