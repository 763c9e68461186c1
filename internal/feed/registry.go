package feed

import (
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// Registry keeps the closed set of source adapters in registration order.
// Aggregation results are concatenated in that order unless shuffled.
type Registry struct {
	adapters []ports.FeedAdapter
}

// NewRegistry builds a registry from a fixed adapter list.
func NewRegistry(adapters ...ports.FeedAdapter) *Registry {
	return &Registry{adapters: adapters}
}

// Register appends an adapter; nil adapters are ignored.
func (r *Registry) Register(adapter ports.FeedAdapter) {
	if adapter == nil {
		return
	}
	r.adapters = append(r.adapters, adapter)
}

// Adapters returns the registered adapters in order.
func (r *Registry) Adapters() []ports.FeedAdapter {
	return r.adapters
}
