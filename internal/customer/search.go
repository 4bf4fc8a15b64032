package customer

import (
	"context"
	"regexp"
	"sync/atomic"

	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

// phonePattern classifies a query as phone-like when it consists entirely
// of digits, spaces, and common phone punctuation.
var phonePattern = regexp.MustCompile(`^[0-9 +\-()]+$`)

// IsPhoneQuery reports whether the query should be searched as a phone
// number rather than a name.
func IsPhoneQuery(query string) bool {
	return phonePattern.MatchString(query)
}

// Lookup is the backend search surface the Searcher depends on.
type Lookup interface {
	SearchCustomersByName(ctx context.Context, name string) ([]erp.Customer, error)
	SearchCustomersByPhone(ctx context.Context, phone string) ([]erp.Customer, error)
}

// Searcher resolves customer queries through the cache-then-network
// strategy: exact-query cache hit short-circuits, otherwise fuzzy-cache
// results stand in while the backend lookup runs, and the two sets merge
// with network results winning on id collision. A backend failure degrades
// to the fuzzy results instead of surfacing an error.
type Searcher struct {
	cache  *Cache
	lookup Lookup

	// latest issued search sequence; stale responses are discarded by
	// comparing against it
	seq atomic.Uint64
}

// NewSearcher creates a searcher over the given cache and backend.
func NewSearcher(cache *Cache, lookup Lookup) *Searcher {
	return &Searcher{cache: cache, lookup: lookup}
}

// Cache exposes the underlying cache for recency and quick-add upserts.
func (s *Searcher) Cache() *Cache {
	return s.cache
}

// Issue allocates the next search sequence number. Every search carries
// one; only the latest issued number is still current.
func (s *Searcher) Issue() uint64 {
	return s.seq.Add(1)
}

// IsLatest reports whether seq is the most recently issued sequence.
func (s *Searcher) IsLatest(seq uint64) bool {
	return seq == s.seq.Load()
}

// Provisional returns the best immediately available results for query:
// the exact cache hit when present, otherwise fuzzy matches over known
// customers. Shown while the network lookup is in flight.
func (s *Searcher) Provisional(query string) []erp.Customer {
	if cached, ok := s.cache.GetCachedSearch(query); ok {
		return cached
	}
	return s.cache.FuzzySearch(query, IsPhoneQuery(query))
}

// Search runs one effective (post-debounce) search. The returned set is
// never accompanied by an error for backend failures; those fall back to
// fuzzy-cache results.
func (s *Searcher) Search(ctx context.Context, query string) []erp.Customer {
	if cached, ok := s.cache.GetCachedSearch(query); ok {
		return cached
	}

	phone := IsPhoneQuery(query)
	fuzzyResults := s.cache.FuzzySearch(query, phone)

	var fresh []erp.Customer
	var err error
	if phone {
		fresh, err = s.lookup.SearchCustomersByPhone(ctx, query)
	} else {
		fresh, err = s.lookup.SearchCustomersByName(ctx, query)
	}
	if err != nil {
		return fuzzyResults
	}

	merged := mergeResults(fresh, fuzzyResults)
	s.cache.UpsertCustomers(fresh)
	s.cache.CacheSearchResult(query, merged)
	return merged
}

// mergeResults appends fuzzy-cache hits after the network results, dropping
// any whose id the network already returned.
func mergeResults(network, fuzzyResults []erp.Customer) []erp.Customer {
	merged := make([]erp.Customer, 0, len(network)+len(fuzzyResults))
	merged = append(merged, network...)

	seen := make(map[string]struct{}, len(network))
	for _, cust := range network {
		seen[cust.ID] = struct{}{}
	}
	for _, cust := range fuzzyResults {
		if _, dup := seen[cust.ID]; !dup {
			merged = append(merged, cust)
		}
	}
	return merged
}
