// Package source defines the review-listing strategies the collector pulls from.
package source

import (
	"context"
	"fmt"
	"sort"

	"ReviewPrep/internal/domain"
)

// Request asks for one page of reviews.
type Request struct {
	AppID   string
	Lang    string
	Country string
	Sort    string
	Count   int
	// Rating restricts the page to one star rating; 0 means any.
	Rating int
	// Token continues a previous page. Empty starts from the beginning.
	Token string
}

// Page is one batch of reviews. An empty NextToken means no more data.
type Page struct {
	Reviews   []domain.Review
	NextToken string
}

// Source is a single strategy implementation (Play Store API, HTML listing, ...).
type Source interface {
	Name() string
	Fetch(ctx context.Context, req Request) (Page, error)
}

// Registry keeps a mapping from source names to their implementations.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered (have %v)", name, r.Names())
}

// Names lists registered sources in alphabetical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
