package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
)

// FeedBuilder is the slice of the feed service the handlers need.
type FeedBuilder interface {
	BuildPage(ctx context.Context, limit int, generateSummaries bool) ([]domain.Record, error)
}

// Handlers carries the HTTP endpoints and their dependencies.
type Handlers struct {
	feed           FeedBuilder
	defaultLimit   int
	maxLimit       int
	requestTimeout time.Duration
	logger         *slog.Logger
}

// NewHandlers wires the endpoints.
func NewHandlers(feed FeedBuilder, defaultLimit, maxLimit int, requestTimeout time.Duration, logger *slog.Logger) *Handlers {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handlers{
		feed:           feed,
		defaultLimit:   defaultLimit,
		maxLimit:       maxLimit,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

type articlePayload struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ArticleURL   string  `json:"article_url"`
	Content      *string `json:"content"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Source       string  `json:"source"`
	Category     string  `json:"category"`
	CreatedAt    string  `json:"created_at"`
}

type metaPayload struct {
	Count      int `json:"count"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

type feedPayload struct {
	Articles []articlePayload `json:"articles"`
	Meta     metaPayload      `json:"meta"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListArticles serves the aggregated feed page.
// Query params: limit (positive integer), generate_summaries (boolean, default true).
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	limit := h.parseLimit(r.URL.Query().Get("limit"))
	generate := parseBool(r.URL.Query().Get("generate_summaries"), true)

	records, err := h.feed.BuildPage(ctx, limit, generate)
	if err != nil {
		h.logger.Error("build feed page", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load articles"})
		return
	}

	articles := make([]articlePayload, 0, len(records))
	for _, rec := range records {
		articles = append(articles, toArticlePayload(rec))
	}

	// Upstream sources do not paginate, so the page is served whole.
	writeJSON(w, http.StatusOK, feedPayload{
		Articles: articles,
		Meta: metaPayload{
			Count:      len(articles),
			Page:       1,
			PerPage:    limit,
			TotalPages: 1,
		},
	})
}

func toArticlePayload(rec domain.Record) articlePayload {
	payload := articlePayload{
		ID:         rec.ID,
		Title:      rec.Title,
		ArticleURL: rec.SourceURL,
		Source:     rec.Provider,
		Category:   string(rec.Category),
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
	if rec.Summary != "" {
		summary := rec.Summary
		payload.Content = &summary
	}
	if rec.ThumbnailURL != "" {
		thumb := rec.ThumbnailURL
		payload.ThumbnailURL = &thumb
	}
	return payload
}

func (h *Handlers) parseLimit(raw string) int {
	if raw == "" {
		return h.defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return h.defaultLimit
	}
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
