package suggest

import "context"

// Suggestion is one autocomplete hit. Location hits carry city/state, contact
// hits only a value.
type Suggestion struct {
	Value string `json:"value"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

// Source answers prefix lookups. Implementations: HTTPSource against the
// backend, TrieSource for in-memory suggestion sets and tests.
type Source interface {
	Lookup(ctx context.Context, prefix string) ([]Suggestion, error)
}
