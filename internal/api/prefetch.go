package api

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type pageKey struct {
	page int
	size int
}

type cachedPage struct {
	page      Page
	fetchedAt time.Time
}

// pageCache holds prefetched pages for the life of the process. Entries are
// handed out once and expire after ttl.
type pageCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[pageKey]cachedPage
	// version is bumped by clear so fetches started before a mutation
	// cannot store what they read.
	version uint64
}

func newPageCache(ttl time.Duration) *pageCache {
	return &pageCache{ttl: ttl, entries: make(map[pageKey]cachedPage)}
}

func (pc *pageCache) get(page, size int) (Page, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	key := pageKey{page, size}
	e, ok := pc.entries[key]
	if !ok {
		return Page{}, false
	}
	delete(pc.entries, key)
	if time.Since(e.fetchedAt) >= pc.ttl {
		return Page{}, false
	}
	return e.page, true
}

func (pc *pageCache) has(page, size int) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	e, ok := pc.entries[pageKey{page, size}]
	return ok && time.Since(e.fetchedAt) < pc.ttl
}

func (pc *pageCache) current() uint64 {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.version
}

// put stores p unless the cache was cleared after version was read.
func (pc *pageCache) put(page, size int, p Page, version uint64) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if version != pc.version {
		return false
	}
	pc.entries[pageKey{page, size}] = cachedPage{page: p, fetchedAt: time.Now()}
	return true
}

func (pc *pageCache) clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.entries = make(map[pageKey]cachedPage)
	pc.version++
}

// Prefetch warms the given pages concurrently with a concurrency limit.
// Failed pages are skipped; the next FetchPage for them goes to the network.
// It returns the number of pages stored.
func (c *Client) Prefetch(ctx context.Context, pages []int, size int) (int, error) {
	if c.pages.ttl <= 0 || len(pages) == 0 {
		return 0, nil
	}

	var mu sync.Mutex
	stored := 0
	version := c.pages.current()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, page := range pages {
		page := page
		if c.pages.has(page, size) {
			continue
		}
		g.Go(func() error {
			p, err := c.fetchPage(ctx, page, size)
			if err != nil {
				// Non-fatal: the page is fetched on demand instead.
				log.Printf("prefetch page %d (size %d): %v", page, size, err)
				return nil
			}
			if !c.pages.put(page, size, p, version) {
				return nil
			}
			mu.Lock()
			stored++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stored, err
	}
	return stored, nil
}
