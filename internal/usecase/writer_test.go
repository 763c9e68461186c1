package usecase

import (
	"context"
	"testing"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
)

func TestUpsertInsertsNewRecords(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	writer := NewWriter(repo, nil)

	task := domain.EnrichmentTask{Candidate: domain.Candidate{
		Title:     "Fresh",
		SourceURL: "https://x/fresh",
		Provider:  "rss",
		Category:  domain.CategoryProgramming,
	}}
	saved, err := writer.Upsert(context.Background(), task, "a real summary", false)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	if saved.ID == "" {
		t.Fatal("insert must assign an id")
	}
	if saved.Summary != "a real summary" || saved.SummaryFallback {
		t.Fatalf("summary not persisted: %+v", saved)
	}
	if repo.inserts != 1 || repo.updates != 0 {
		t.Fatalf("expected one insert, got inserts=%d updates=%d", repo.inserts, repo.updates)
	}
}

func TestUpsertInsertsUnderServedID(t *testing.T) {
	t.Parallel()

	repo := newFakeRepo()
	writer := NewWriter(repo, nil)

	task := domain.EnrichmentTask{
		Candidate: domain.Candidate{Title: "Fresh", SourceURL: "https://x/fresh"},
		RecordID:  "served-id",
	}
	saved, err := writer.Upsert(context.Background(), task, "a real summary", false)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	if saved.ID != "served-id" {
		t.Fatalf("insert must keep the id the client already saw, got %q", saved.ID)
	}
}

func TestUpsertUpdatesTitleButKeepsRealSummary(t *testing.T) {
	t.Parallel()

	existing := domain.Record{ID: "rec-1", SourceURL: "u1", Title: "Old Title", Summary: "hand-written summary"}
	repo := newFakeRepo(existing)
	writer := NewWriter(repo, nil)

	task := domain.EnrichmentTask{
		Candidate: domain.Candidate{Title: "Corrected Title", SourceURL: "u1"},
		Record:    &existing,
	}
	saved, err := writer.Upsert(context.Background(), task, "a placeholder retry", true)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	if saved.Title != "Corrected Title" {
		t.Fatalf("title must be last-writer-wins, got %q", saved.Title)
	}
	if saved.Summary != "hand-written summary" {
		t.Fatalf("real summary was clobbered: %q", saved.Summary)
	}
}

func TestUpsertUpgradesFallbackSummary(t *testing.T) {
	t.Parallel()

	existing := domain.Record{ID: "rec-1", SourceURL: "u1", Title: "T", Summary: "placeholder", SummaryFallback: true}
	repo := newFakeRepo(existing)
	writer := NewWriter(repo, nil)

	task := domain.EnrichmentTask{
		Candidate: domain.Candidate{Title: "T", SourceURL: "u1"},
		Record:    &existing,
	}
	saved, err := writer.Upsert(context.Background(), task, "a real llm summary", false)
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	if saved.Summary != "a real llm summary" || saved.SummaryFallback {
		t.Fatalf("fallback should be upgraded to the real summary, got %+v", saved)
	}
}
