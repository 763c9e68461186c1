package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatServer(t *testing.T, captured *chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":" a concise summary "}}]}`))
	}))
}

func newTestClient(endpoint string) *OpenAIClient {
	return NewOpenAIClient(config.LLMConfig{
		Endpoint: endpoint,
		Model:    "test-model",
		APIKey:   "key",
	}, nil)
}

func TestSummarizeReturnsTrimmedCompletion(t *testing.T) {
	t.Parallel()

	var captured chatRequest
	srv := newChatServer(t, &captured)
	defer srv.Close()

	got, err := newTestClient(srv.URL).Summarize(context.Background(), "Title", "some article text", 180)
	if err != nil {
		t.Fatalf("Summarize error: %v", err)
	}
	if got != "a concise summary" {
		t.Fatalf("unexpected summary %q", got)
	}
	if captured.Model != "test-model" || len(captured.Messages) != 2 {
		t.Fatalf("unexpected payload: %+v", captured)
	}
}

func TestSummarizeTruncatesInputAtRuneBoundary(t *testing.T) {
	t.Parallel()

	var captured chatRequest
	srv := newChatServer(t, &captured)
	defer srv.Close()

	// One ASCII byte up front misaligns the byte cut so it would land inside
	// a two-byte rune without the boundary backoff.
	text := "a" + strings.Repeat("é", maxInputChars)

	if _, err := newTestClient(srv.URL).Summarize(context.Background(), "Title", text, 180); err != nil {
		t.Fatalf("Summarize error: %v", err)
	}

	user := captured.Messages[1].Content
	if !utf8.ValidString(user) {
		t.Fatal("truncated input is not valid UTF-8")
	}
	if strings.Contains(user, "�") {
		t.Fatal("truncation split a rune; replacement character shipped to the model")
	}
}

func TestSummarizeRejectsMisconfiguredClient(t *testing.T) {
	t.Parallel()

	client := NewOpenAIClient(config.LLMConfig{}, nil)
	if _, err := client.Summarize(context.Background(), "T", "text", 180); err == nil {
		t.Fatal("expected error for missing endpoint/model/key")
	}
}
