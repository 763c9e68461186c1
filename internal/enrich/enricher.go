package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// Options bound the summarization chain.
type Options struct {
	MinSourceChars int // shortest abstract/content worth summarizing
	MaxWords       int // word budget passed to the LLM
	TruncateChars  int // truncation fallback length
	Quality        QualityThresholds
}

// Enricher walks the summary priority chain: provider abstract, feed-carried
// content, page extraction, LLM summarization, then deterministic fallbacks.
// It never returns an empty summary and never surfaces an error.
type Enricher struct {
	extractor ports.Extractor
	llm       ports.Summarizer
	opts      Options
	logger    *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// New wires the chain. extractor and llm may be nil; the chain skips them.
func New(extractor ports.Extractor, llm ports.Summarizer, opts Options, logger *slog.Logger) *Enricher {
	if opts.MinSourceChars <= 0 {
		opts.MinSourceChars = 50
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 180
	}
	if opts.TruncateChars <= 0 {
		opts.TruncateChars = 300
	}
	return &Enricher{extractor: extractor, llm: llm, opts: opts, logger: logger}
}

// Summarize derives the best available summary. fallback marks
// placeholder-grade results that a later pass may replace.
func (e *Enricher) Summarize(ctx context.Context, c domain.Candidate) (string, bool) {
	text := e.usable(c.Abstract)
	if text == "" {
		text = e.usable(c.Content)
	}

	if text == "" && !c.SkipExtraction && e.extractor != nil {
		extracted, err := e.extractor.Extract(ctx, c.SourceURL)
		if err != nil {
			e.debug("extraction failed", "url", c.SourceURL, "error", err)
		} else {
			text = e.usable(extracted)
			if text == "" {
				e.debug("extraction rejected by quality check", "url", c.SourceURL)
			}
		}
	}

	if text == "" {
		return FallbackSummary(c), true
	}

	if e.llm != nil {
		summary, err := e.llm.Summarize(ctx, c.Title, text, e.opts.MaxWords)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary), false
		}
		if err != nil {
			e.debug("llm summarization failed", "url", c.SourceURL, "error", err)
		}
	}

	return Truncate(text, e.opts.TruncateChars), true
}

// usable trims the text and returns it only when long and clean enough to
// feed the summarizer.
func (e *Enricher) usable(text string) string {
	text = strings.TrimSpace(text)
	if len(text) < e.opts.MinSourceChars {
		return ""
	}
	if !e.opts.Quality.Acceptable(text) {
		return ""
	}
	return text
}

// FallbackSummary is the deterministic last-resort sentence referencing the
// provider and title.
func FallbackSummary(c domain.Candidate) string {
	provider := c.Provider
	if provider == "" {
		provider = "an external source"
	}
	return fmt.Sprintf("%q is an article from %s. A full summary is not available yet.", c.Title, provider)
}

// Truncate cuts text at a word boundary at or below max bytes, never
// splitting a multi-byte rune.
func Truncate(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	cut := text[:max]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:-") + "..."
}

func (e *Enricher) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
