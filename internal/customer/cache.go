// Package customer implements the client-side customer search layer: an
// exact-query result cache, a fuzzy match over previously seen customers,
// and a small most-recently-used list.
package customer

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sahilm/fuzzy"

	"github.com/poparab/jarz-pos-terminal/internal/erp"
)

// RecentLimit caps the most-recently-selected customer list.
const RecentLimit = 5

// DefaultQueryCacheSize bounds the exact-query result cache.
const DefaultQueryCacheSize = 64

// Cache holds everything the client remembers about customers between
// searches. It is confined to the TUI event loop.
type Cache struct {
	queries *lru.LRU[string, []erp.Customer]

	// known customers by id, plus insertion order for stable fuzzy results
	byID  map[string]erp.Customer
	order []string

	recent []erp.Customer
}

// NewCache creates a cache whose query results expire after ttl.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultQueryCacheSize
	}
	return &Cache{
		queries: lru.NewLRU[string, []erp.Customer](size, nil, ttl),
		byID:    make(map[string]erp.Customer),
	}
}

// normalizeQuery is the cache key form of a search query.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// GetCachedSearch returns the cached result set for an exact query, if any.
func (c *Cache) GetCachedSearch(query string) ([]erp.Customer, bool) {
	return c.queries.Get(normalizeQuery(query))
}

// CacheSearchResult stores a result set under the query key.
func (c *Cache) CacheSearchResult(query string, results []erp.Customer) {
	c.queries.Add(normalizeQuery(query), results)
}

// UpsertCustomers records customers into the fuzzy-match store.
func (c *Cache) UpsertCustomers(customers []erp.Customer) {
	for _, cust := range customers {
		if cust.ID == "" {
			continue
		}
		if _, seen := c.byID[cust.ID]; !seen {
			c.order = append(c.order, cust.ID)
		}
		c.byID[cust.ID] = cust
	}
}

// Known returns how many customers the fuzzy store holds.
func (c *Cache) Known() int {
	return len(c.byID)
}

// customerSource adapts the store to fuzzy.Source over one haystack field.
type customerSource struct {
	customers []erp.Customer
	phone     bool
}

func (s customerSource) Len() int { return len(s.customers) }

func (s customerSource) String(i int) string {
	if s.phone {
		return s.customers[i].MobileNo
	}
	return s.customers[i].CustomerName
}

// FuzzySearch runs an approximate match over the cached customer set,
// against mobile numbers for phone-like queries and display names
// otherwise. Results come back best match first.
func (c *Cache) FuzzySearch(query string, phone bool) []erp.Customer {
	query = strings.TrimSpace(query)
	if query == "" || len(c.order) == 0 {
		return nil
	}

	pool := make([]erp.Customer, 0, len(c.order))
	for _, id := range c.order {
		pool = append(pool, c.byID[id])
	}

	matches := fuzzy.FindFrom(query, customerSource{customers: pool, phone: phone})
	results := make([]erp.Customer, 0, len(matches))
	for _, m := range matches {
		results = append(results, pool[m.Index])
	}
	return results
}

// MarkUsed moves the customer to the front of the recency list, deduplicated
// by id and capped at RecentLimit.
func (c *Cache) MarkUsed(cust erp.Customer) {
	kept := make([]erp.Customer, 0, len(c.recent)+1)
	kept = append(kept, cust)
	for _, existing := range c.recent {
		if existing.ID != cust.ID {
			kept = append(kept, existing)
		}
	}
	if len(kept) > RecentLimit {
		kept = kept[:RecentLimit]
	}
	c.recent = kept

	c.UpsertCustomers([]erp.Customer{cust})
}

// Recent returns up to n most-recently-selected customers, newest first.
func (c *Cache) Recent(n int) []erp.Customer {
	if n > len(c.recent) {
		n = len(c.recent)
	}
	out := make([]erp.Customer, n)
	copy(out, c.recent[:n])
	return out
}
