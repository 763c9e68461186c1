// Package usecase orchestrates the request path (aggregate, resolve,
// assemble) and the background enrichment path (summarize, persist).
package usecase

import (
	"context"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// KnownCandidate pairs a candidate with its persisted record.
type KnownCandidate struct {
	Candidate domain.Candidate
	Record    domain.Record
}

// Resolution splits one request's candidates into already-known and new.
type Resolution struct {
	Known []KnownCandidate
	New   []domain.Candidate
}

// resolveCandidates dedupes the batch by source URL (keep-first) and matches
// it against the store in a single FindByURLs round trip. Title drift does
// not break identity; only the URL matters.
func resolveCandidates(ctx context.Context, repo ports.ArticleRepository, candidates []domain.Candidate) (Resolution, error) {
	unique := dedupeByURL(candidates)

	if repo == nil || len(unique) == 0 {
		return Resolution{New: unique}, nil
	}

	urls := make([]string, len(unique))
	for i, c := range unique {
		urls[i] = c.SourceURL
	}

	records, err := repo.FindByURLs(ctx, urls)
	if err != nil {
		return Resolution{}, err
	}

	byURL := make(map[string]domain.Record, len(records))
	for _, rec := range records {
		byURL[rec.SourceURL] = rec
	}

	var res Resolution
	for _, c := range unique {
		if rec, ok := byURL[c.SourceURL]; ok {
			res.Known = append(res.Known, KnownCandidate{Candidate: c, Record: rec})
		} else {
			res.New = append(res.New, c)
		}
	}
	return res, nil
}
