package feed

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// Aggregator fans out to every registered adapter concurrently and merges
// whatever they produce. Adapters swallow their own failures, so the merge
// never fails; total latency is bounded by the slowest adapter's timeout.
type Aggregator struct {
	registry *Registry
	shuffle  bool
	logger   *slog.Logger
}

// NewAggregator wires the registry; shuffle applies a uniform permutation to
// the merged result instead of registration order.
func NewAggregator(registry *Registry, shuffle bool, logger *slog.Logger) *Aggregator {
	return &Aggregator{registry: registry, shuffle: shuffle, logger: logger}
}

// FetchAll runs every adapter with its per-provider limit and concatenates
// the results. Order is registration order, optionally shuffled afterwards;
// the merged list is clamped to limit so the page never exceeds what the
// client asked for.
func (a *Aggregator) FetchAll(ctx context.Context, limit int) []domain.Candidate {
	adapters := a.registry.Adapters()
	if len(adapters) == 0 {
		return nil
	}

	results := make([][]domain.Candidate, len(adapters))

	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, adapter ports.FeedAdapter) {
			defer wg.Done()
			results[i] = adapter.Fetch(ctx, limit)
			a.debug("adapter settled", "provider", adapter.Name(), "count", len(results[i]))
		}(i, adapter)
	}
	wg.Wait()

	var merged []domain.Candidate
	for _, part := range results {
		merged = append(merged, part...)
	}

	if a.shuffle {
		rand.Shuffle(len(merged), func(i, j int) {
			merged[i], merged[j] = merged[j], merged[i]
		})
	}

	// Clamp after the shuffle so a capped page still mixes providers.
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	a.debug("aggregation done", "adapters", len(adapters), "total", len(merged))
	return merged
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
