package services

import (
	"sort"
	"strings"

	"github.com/vantoi-labs/hoadon-cli/internal/core/ports/driven"
)

// Registry maps tax-provider names to their DocumentRetriever variants.
// The set is closed and immutable once built; lookups are case-insensitive
// because provider names arrive from portal data with inconsistent casing.
type Registry struct {
	variants map[string]driven.DocumentRetriever
}

// NewRegistry creates a registry over the given variants. A later variant
// with the same name as an earlier one replaces it.
func NewRegistry(retrievers ...driven.DocumentRetriever) *Registry {
	variants := make(map[string]driven.DocumentRetriever, len(retrievers))
	for _, r := range retrievers {
		variants[strings.ToLower(r.Name())] = r
	}
	return &Registry{variants: variants}
}

// Lookup resolves a tax-provider name to its retriever variant.
func (r *Registry) Lookup(name string) (driven.DocumentRetriever, bool) {
	v, ok := r.variants[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
