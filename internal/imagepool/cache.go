package imagepool

import (
	"sync"

	"cardpress/internal/fileutil"
)

// Cache memoizes directory listings for the duration of one run. Pools are
// listed once per run even when several output classes read the same
// directory; Invalidate is called at run start so listings never outlive the
// run that produced them.
type Cache struct {
	mu       sync.Mutex
	listings map[string][]string
}

func NewCache() *Cache {
	return &Cache{listings: make(map[string][]string)}
}

// List returns the immediate files of dir, sorted, from cache when available.
func (c *Cache) List(dir string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if names, ok := c.listings[dir]; ok {
		return names, nil
	}
	names, err := fileutil.ListFiles(dir)
	if err != nil {
		return nil, err
	}
	c.listings[dir] = names
	return names, nil
}

// Invalidate drops all cached listings.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listings = make(map[string][]string)
}
