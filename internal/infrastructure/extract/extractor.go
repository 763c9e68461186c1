// Package extract fetches article pages and pulls out their readable text.
// A goquery paragraph harvest with boilerplate filters does the main work;
// readability covers pages without usable paragraph markup.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

const (
	maxBodyBytes = 2 << 20
	userAgent    = "betterfeed/1.0 (article aggregation; contact: team6@betterfeed.app)"
)

var (
	whitespaceExpr = regexp.MustCompile(`\s+`)

	// boilerplateExpr matches paragraph-shaped navigation, consent and
	// timestamp noise that survives tag stripping.
	boilerplateExpr = regexp.MustCompile(`(?i)(cookie|subscribe|sign (in|up)|newsletter|all rights reserved|read more|share this|advertisement|^\s*(updated|published|posted)[:\s])`)

	strippedSelectors = "script, style, nav, header, footer, aside, form, noscript, iframe"
	contentSelectors  = []string{"article", "main", "[role=main]", ".article-content", ".post-content", ".entry-content", "#content"}
)

// PageExtractor implements ports.Extractor over plain HTTP GET.
type PageExtractor struct {
	client            *http.Client
	minParagraphChars int
	logger            *slog.Logger
}

var _ ports.Extractor = (*PageExtractor)(nil)

// New wires the extractor. minParagraphChars filters boilerplate-shaped
// short paragraphs out of the goquery harvest.
func New(client *http.Client, minParagraphChars int, logger *slog.Logger) *PageExtractor {
	if client == nil {
		client = &http.Client{}
	}
	if minParagraphChars <= 0 {
		minParagraphChars = 60
	}
	return &PageExtractor{client: client, minParagraphChars: minParagraphChars, logger: logger}
}

// Extract fetches the page and returns its readable article text. Binary
// responses (PDFs and friends) are rejected before any parsing.
func (p *PageExtractor) Extract(ctx context.Context, pageURL string) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url: %w", err)
	}
	if strings.HasSuffix(strings.ToLower(parsedURL.Path), ".pdf") {
		return "", fmt.Errorf("refusing to scrape binary document %s", pageURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page returned %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return "", fmt.Errorf("unsupported content type %s", contentType)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read page body: %w", err)
	}

	text, err := p.fromParagraphs(raw)
	if err != nil || text == "" {
		// Pages without paragraph markup still often parse cleanly
		// through readability's scoring.
		if fallback := p.fromReadability(raw, parsedURL); fallback != "" {
			return fallback, nil
		}
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("no article text found at %s", pageURL)
	}
	return text, nil
}

func (p *PageExtractor) fromReadability(raw []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		p.debug("readability parse failed", "url", pageURL.String(), "error", err)
		return ""
	}
	return collapse(article.TextContent)
}

// fromParagraphs strips chrome elements, picks the densest content
// container and concatenates its paragraphs.
func (p *PageExtractor) fromParagraphs(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	doc.Find(strippedSelectors).Remove()

	root := doc.Selection
	for _, selector := range contentSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			root = found.First()
			break
		}
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, sel *goquery.Selection) {
		text := collapse(sel.Text())
		if len(text) < p.minParagraphChars {
			return
		}
		if boilerplateExpr.MatchString(text) {
			return
		}
		paragraphs = append(paragraphs, text)
	})

	return strings.Join(paragraphs, "\n\n"), nil
}

func collapse(text string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(text, " "))
}

func (p *PageExtractor) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
