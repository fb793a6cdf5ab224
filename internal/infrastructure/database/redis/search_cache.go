package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/Resonance-Intelligence/internal/domain/signal"
)

// DefaultSearchTTL bounds how long a name resolution is reused.
const DefaultSearchTTL = 6 * time.Hour

// CachedProvider memoizes successful provider searches. Heatmap requests are
// never cached.
type CachedProvider struct {
	next  signal.Provider
	cache *Cache
	ttl   time.Duration
}

var _ signal.Provider = (*CachedProvider)(nil)

func NewCachedProvider(next signal.Provider, cache *Cache, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = DefaultSearchTTL
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl}
}

func searchKey(req signal.SearchRequest) string {
	return fmt.Sprintf("search:%s:%d:%s:%s", req.Kind, req.Limit, req.SortBy, strings.ToLower(strings.TrimSpace(req.Query)))
}

// Search serves repeated name lookups from the cache. Only successful
// results are stored.
func (p *CachedProvider) Search(ctx context.Context, req signal.SearchRequest) (*signal.SearchResult, error) {
	return Fetch(ctx, p.cache, searchKey(req), p.ttl, func(ctx context.Context) (*signal.SearchResult, bool, error) {
		res, err := p.next.Search(ctx, req)
		return res, err == nil && res != nil && res.Success, err
	})
}

func (p *CachedProvider) GetGrid(ctx context.Context, req signal.GridRequest) (*signal.GridResult, error) {
	return p.next.GetGrid(ctx, req)
}

//Personal.AI order the ending
