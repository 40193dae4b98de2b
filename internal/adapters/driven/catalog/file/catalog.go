// Package file provides a file-backed catalog adapter.
//
// A catalog is a JSON array of items on local disk. It implements both
// the metadata source and the prefix lookup, so the discovery engine can
// run fully offline against exported or synthetic item sets.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/contra-labs/contrafeed-cli/internal/core/domain"
	"github.com/contra-labs/contrafeed-cli/internal/core/ports/driven"
	"github.com/contra-labs/contrafeed-cli/internal/logger"
)

// Ensure Catalog implements the interfaces.
var (
	_ driven.MetadataSource = (*Catalog)(nil)
	_ driven.PrefixSearcher = (*Catalog)(nil)
)

// catalogItem is the on-disk item format.
type catalogItem struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
	ChannelTitle string   `json:"channel_title"`
	Available    *bool    `json:"available"` // nil means available
	DedupKey     string   `json:"dedup_key"`
	Categories   []string `json:"categories"`
}

// Catalog serves item metadata and identifier lookups from a JSON file.
type Catalog struct {
	path string

	mu         sync.RWMutex
	items      map[string]domain.Item
	sortedIDs  []string
	categories map[string][]string

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Open loads a catalog from the given JSON file.
func Open(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// reload re-reads the catalog file and swaps the indexes atomically.
func (c *Catalog) reload() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("reading catalog %s: %w", c.path, err)
	}

	var raw []catalogItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing catalog %s: %w", c.path, err)
	}

	items := make(map[string]domain.Item, len(raw))
	categories := make(map[string][]string)
	for _, ci := range raw {
		if ci.ID == "" {
			continue
		}
		available := ci.Available == nil || *ci.Available
		items[ci.ID] = domain.Item{
			ID:           ci.ID,
			Title:        ci.Title,
			Description:  ci.Description,
			Tags:         ci.Tags,
			ChannelTitle: ci.ChannelTitle,
			Available:    available,
			DedupKey:     ci.DedupKey,
		}
		for _, cat := range ci.Categories {
			cat = strings.ToLower(cat)
			categories[cat] = append(categories[cat], ci.ID)
		}
	}

	sortedIDs := make([]string, 0, len(items))
	for id := range items {
		sortedIDs = append(sortedIDs, id)
	}
	sort.Strings(sortedIDs)

	c.mu.Lock()
	c.items = items
	c.sortedIDs = sortedIDs
	c.categories = categories
	c.mu.Unlock()

	logger.Debug("Catalog loaded: %d items from %s", len(items), c.path)
	return nil
}

// Watch reloads the catalog whenever the file changes on disk. Watching
// stops when the watcher is closed via Close.
func (c *Catalog) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(c.path); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", c.path, err)
	}

	c.watcher = watcher
	c.done = make(chan struct{})

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					if err := c.reload(); err != nil {
						logger.Warn("Catalog reload failed: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Catalog watcher: %v", err)
			case <-c.done:
				return
			}
		}
	}()

	return nil
}

// Close stops the file watcher, if one is running.
func (c *Catalog) Close() error {
	if c.watcher == nil {
		return nil
	}
	close(c.done)
	return c.watcher.Close()
}

// Size returns the number of items in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// FetchItem retrieves metadata for a single item.
func (c *Catalog) FetchItem(_ context.Context, id string) (*domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return &item, nil
}

// FetchItems retrieves metadata for multiple items. Unresolvable
// identifiers are omitted.
func (c *Catalog) FetchItems(_ context.Context, ids []string) ([]domain.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := c.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// SearchByPrefix returns up to maxResults identifiers starting with
// prefix. The identifier list is kept sorted, so the matching range is
// found by binary search.
func (c *Catalog) SearchByPrefix(_ context.Context, prefix string, maxResults int) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := sort.SearchStrings(c.sortedIDs, prefix)
	var out []string
	for i := start; i < len(c.sortedIDs) && len(out) < maxResults; i++ {
		if !strings.HasPrefix(c.sortedIDs[i], prefix) {
			break
		}
		out = append(out, c.sortedIDs[i])
	}
	return out, nil
}

// SearchByTopic returns up to maxResults identifiers filed under the
// topical bucket.
func (c *Catalog) SearchByTopic(_ context.Context, topic string, maxResults int) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := c.categories[strings.ToLower(topic)]
	if len(ids) > maxResults {
		ids = ids[:maxResults]
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
