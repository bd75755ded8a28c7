package apicache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Cache is a two-tier (memory + disk) TTL cache for API responses. Disk
// writes are best-effort: a failed write never fails the caller, it only
// loses the cross-process tier.
type Cache struct {
	dir string
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	// Now is overridable in tests.
	Now func() time.Time
}

type cacheEntry struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

func New(dir string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	c := &Cache{
		dir:     dir,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		Now:     func() time.Time { return time.Now().UTC() },
	}
	if dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	return c
}

// Key builds the stable cache key: cacheType plus a short digest of the id.
func Key(cacheType, id string) string {
	sum := md5.Sum([]byte(id))
	return cacheType + "_" + hex.EncodeToString(sum[:])[:16]
}

// Get returns the cached payload for (cacheType, id) if present and fresh.
// Memory is consulted first; disk entries are loaded lazily.
func (c *Cache) Get(cacheType, id string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	key := Key(cacheType, id)
	now := c.Now()

	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok && c.dir != "" {
		loaded, err := c.readFile(key)
		if err == nil {
			entry = loaded
			ok = true
			c.mu.Lock()
			c.entries[key] = entry
			c.mu.Unlock()
		}
	}
	if !ok {
		return nil, false
	}
	if now.Sub(entry.StoredAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		if c.dir != "" {
			_ = os.Remove(filepath.Join(c.dir, key+".json"))
		}
		return nil, false
	}
	return entry.Data, true
}

// Set stores the payload in both tiers.
func (c *Cache) Set(cacheType, id string, data []byte) {
	if c == nil {
		return
	}
	key := Key(cacheType, id)
	entry := cacheEntry{StoredAt: c.Now(), Data: json.RawMessage(data)}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_ = os.WriteFile(filepath.Join(c.dir, key+".json"), raw, 0o644)
	c.writeIndex(key, entry.StoredAt)
}

// Sweep drops expired entries from both tiers and reports how many were
// removed from memory.
func (c *Cache) Sweep() int {
	if c == nil {
		return 0
	}
	now := c.Now()
	removed := 0

	c.mu.Lock()
	for key, entry := range c.entries {
		if now.Sub(entry.StoredAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if c.dir != "" {
		files, err := os.ReadDir(c.dir)
		if err == nil {
			for _, f := range files {
				if f.IsDir() || f.Name() == "index.json" {
					continue
				}
				key := f.Name()
				if filepath.Ext(key) == ".json" {
					key = key[:len(key)-len(".json")]
				}
				entry, err := c.readFile(key)
				if err != nil || now.Sub(entry.StoredAt) > c.ttl {
					_ = os.Remove(filepath.Join(c.dir, f.Name()))
				}
			}
		}
	}
	return removed
}

func (c *Cache) readFile(key string) (cacheEntry, error) {
	raw, err := os.ReadFile(filepath.Join(c.dir, key+".json"))
	if err != nil {
		return cacheEntry{}, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return cacheEntry{}, err
	}
	return entry, nil
}

func (c *Cache) writeIndex(key string, storedAt time.Time) {
	path := filepath.Join(c.dir, "index.json")
	index := map[string]time.Time{}
	if raw, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(raw, &index)
	}
	index[key] = storedAt
	raw, err := json.Marshal(index)
	if err != nil {
		return
	}
	_ = os.WriteFile(path, raw, 0o644)
}
