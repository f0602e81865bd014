// Package resolver matches normalized domain keys against organizations in
// the store. Each Resolver carries a per-run cache so a key appearing many
// times in one input costs a single store round trip.
package resolver

import (
	"context"
	"log"
	"sync"

	"github.com/zeebo/xxh3"

	"fundquery/internal/store"
)

// Resolver resolves normalized keys to organizations, caching results for
// the lifetime of the Resolver. Safe for concurrent use.
type Resolver struct {
	st store.Store

	mu    sync.Mutex
	cache map[uint64]entry

	hits   int64
	misses int64
}

// entry keeps the original key alongside the result so a 64-bit hash
// collision cannot hand back another key's organization.
type entry struct {
	key string
	org *store.Organization
}

// Stats reports cache effectiveness for end-of-run summaries.
type Stats struct {
	Hits   int64
	Misses int64
}

func New(st store.Store) *Resolver {
	return &Resolver{
		st:    st,
		cache: make(map[uint64]entry),
	}
}

// Resolve returns the organization whose normalized website matches key, or
// (nil, nil) when no organization matches. key must already be normalized.
// Negative results are cached like positive ones; store failures are not.
func (r *Resolver) Resolve(ctx context.Context, key string) (*store.Organization, error) {
	h := xxh3.HashString(key)

	r.mu.Lock()
	if e, ok := r.cache[h]; ok && e.key == key {
		r.hits++
		r.mu.Unlock()
		return e.org, nil
	}
	r.mu.Unlock()

	candidates, err := r.st.LookupOrganizationsByNormalizedURL(ctx, key)
	if err != nil {
		return nil, err
	}

	org := pick(key, candidates)

	r.mu.Lock()
	r.misses++
	r.cache[h] = entry{key: key, org: org}
	r.mu.Unlock()
	return org, nil
}

// pick chooses among multiple exact matches. FilterExact in the store layer
// already sorts candidates by UUID, so the first one wins deterministically.
func pick(key string, candidates []store.Organization) *store.Organization {
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		org := candidates[0]
		return &org
	default:
		org := candidates[0]
		log.Printf("WARNING: %d organizations share website %q, using uuid=%s (%s)",
			len(candidates), key, org.UUID, org.Name)
		return &org
	}
}

// Stats returns a snapshot of cache hit and miss counts.
func (r *Resolver) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{Hits: r.hits, Misses: r.misses}
}
