package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// maxInputChars bounds the article text shipped to the API; anything longer
// adds cost without improving a 180-word summary.
const maxInputChars = 12000

// OpenAIClient implements ports.Summarizer backed by OpenAI-compatible
// chat-completions APIs.
type OpenAIClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.Summarizer = (*OpenAIClient)(nil)

// NewOpenAIClient builds a client from configuration.
func NewOpenAIClient(cfg config.LLMConfig, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 45 * time.Second}
	}
	return &OpenAIClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		httpClient:   httpClient,
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize posts the article text and returns the model's summary.
func (c *OpenAIClient) Summarize(ctx context.Context, title, text string, maxWords int) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("llm client misconfigured")
	}

	if len(text) > maxInputChars {
		cut := maxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	user := fmt.Sprintf("Title: %s\n\n%s\n\nSummarize this article in at most %d words.", title, text, maxWords)
	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You write concise, accessible summaries of articles. " +
			"Capture the core question, method and findings in plain language. " +
			"Do not add meta-commentary."
	}
	return prompt
}
