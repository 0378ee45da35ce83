// Package api serves assessment history over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/history"
	"github.com/abhisek/mockprep/internal/logger"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
)

// HistoryService is the read side the API exposes.
type HistoryService interface {
	List(ctx context.Context, userID string, category question.Category, limit int) ([]history.Entry, error)
	Detail(ctx context.Context, id int64) (*history.Detail, error)
	SampleAnswer(ctx context.Context, id int64, index int) (string, error)
	Stats(ctx context.Context, userID string) (*history.Stats, error)
}

var _ HistoryService = (*history.Service)(nil)

// Handler serves the history endpoints.
type Handler struct {
	svc HistoryService
	log *zap.Logger
}

func NewHandler(svc HistoryService, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: logger.OrNop(log)}
}

// Router returns the full route tree with middleware.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(requestLogger(h.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers the /api routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/users/{userID}/assessments", h.ListAssessments)
		r.Get("/users/{userID}/stats", h.Stats)
		r.Get("/assessments/{id}", h.GetAssessment)
		r.Get("/assessments/{id}/questions/{index}/sample", h.GetSample)
	})
}

// ListAssessments returns a user's assessments newest first, optionally
// filtered by ?type= and capped by ?limit=.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var category question.Category
	if t := r.URL.Query().Get("type"); t != "" {
		c, ok := question.ParseCategory(t)
		if !ok {
			Error(w, http.StatusBadRequest, "unknown assessment type")
			return
		}
		category = c
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.svc.List(r.Context(), userID, category, limit)
	if err != nil {
		h.internal(w, r, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	JSON(w, http.StatusOK, entries)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.internal(w, r, err)
		return
	}
	JSON(w, http.StatusOK, st)
}

func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Detail(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		Error(w, http.StatusNotFound, "assessment not found")
		return
	}
	if err != nil {
		h.internal(w, r, err)
		return
	}
	JSON(w, http.StatusOK, d)
}

// GetSample generates, or returns the cached, sample answer for one
// question of a stored assessment.
func (h *Handler) GetSample(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid question index")
		return
	}

	text, err := h.svc.SampleAnswer(r.Context(), id, index)
	switch {
	case errors.Is(err, history.ErrNotFound):
		Error(w, http.StatusNotFound, "assessment not found")
	case errors.Is(err, history.ErrQuestionIndex):
		Error(w, http.StatusNotFound, "question not found")
	case errors.Is(err, sample.ErrUnavailable):
		Error(w, http.StatusServiceUnavailable, "sample answers are not configured")
	case err != nil:
		h.log.Warn("sample answer failed", zap.Int64("id", id), zap.Int("index", index), zap.Error(err))
		Error(w, http.StatusBadGateway, "sample answer generation failed")
	default:
		JSON(w, http.StatusOK, map[string]any{"index": index, "sample_answer": text})
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		Error(w, http.StatusBadRequest, "invalid assessment id")
		return 0, false
	}
	return id, true
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	Error(w, http.StatusInternalServerError, "internal error")
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error body.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", chiMiddleware.GetReqID(r.Context())))
		})
	}
}
