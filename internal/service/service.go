// Package service exposes the narrow query contract consumed by the
// HTTP layer and the CLI: token search, exact-id lookup, claim intake,
// and ingestion triggering.
package service

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	propseekerrors "github.com/propseek/propseek/internal/errors"
	"github.com/propseek/propseek/internal/ingest"
	"github.com/propseek/propseek/internal/store"
)

// MinQueryLength is the usability floor on search queries. Shorter
// queries are rejected before touching the index.
const MinQueryLength = 2

// DefaultCacheSize is the default capacity of the lookup cache.
const DefaultCacheSize = 1024

// Properties is the read/trigger facade over the store and the
// ingestion runner.
type Properties struct {
	store      *store.Store
	runner     *ingest.Runner
	maxResults int

	// Committed records are immutable, so cached lookups never go stale.
	cache *lru.Cache[string, *store.Property]
}

// NewProperties creates the service. maxResults caps the limit a caller
// may request; runner may be nil for read-only deployments.
func NewProperties(st *store.Store, runner *ingest.Runner, cacheSize, maxResults int) *Properties {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	if maxResults <= 0 {
		maxResults = 100
	}
	cache, _ := lru.New[string, *store.Property](cacheSize)
	return &Properties{
		store:      st,
		runner:     runner,
		maxResults: maxResults,
		cache:      cache,
	}
}

// Search returns properties matching the query, best match first.
// An empty result is valid, not an error.
func (s *Properties) Search(ctx context.Context, query string, limit int) ([]store.Property, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return nil, propseekerrors.QueryTooShort(
			fmt.Sprintf("query must be at least %d characters", MinQueryLength))
	}
	if limit <= 0 || limit > s.maxResults {
		limit = s.maxResults
	}

	ids, err := s.store.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]store.Property, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			// The index never covers uncommitted rows, so a miss here is
			// a store fault, not an absent record.
			return nil, err
		}
		results = append(results, *p)
	}
	return results, nil
}

// GetByID fetches one property, serving repeats from the LRU cache.
// Absence surfaces as ERR_402_NOT_FOUND.
func (s *Properties) GetByID(ctx context.Context, propertyID string) (*store.Property, error) {
	if p, ok := s.cache.Get(propertyID); ok {
		return p, nil
	}

	p, err := s.store.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	s.cache.Add(propertyID, p)
	return p, nil
}

// Ingest triggers one ingestion run over the given locations.
func (s *Properties) Ingest(ctx context.Context, locations []string) (ingest.Summary, error) {
	if s.runner == nil {
		return ingest.Summary{}, propseekerrors.Newf(propseekerrors.ErrCodeInternal,
			"ingestion is not configured")
	}
	return s.runner.Run(ctx, locations)
}

// Stats reports store size and index watermark.
func (s *Properties) Stats(ctx context.Context) (store.Stats, error) {
	return s.store.Stats(ctx)
}
