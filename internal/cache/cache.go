// Package cache keeps revision service replies on disk so repeated passes
// over an unchanged paragraph do not hit the service again.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	EnvDir        = "VIBEWRITE_CACHE_DIR"
	cacheSubdir   = "vibewrite/revisions"
	entrySuffix   = ".mp"
	DefaultTTL    = 7 * 24 * time.Hour
	schemaVersion = 1
)

// DiskCache stores one msgpack file per key. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	Schema   uint16    `msgpack:"schema"`
	Key      string    `msgpack:"key"`
	Text     string    `msgpack:"text"`
	CachedAt time.Time `msgpack:"cached_at"`
}

// Dir resolves the cache directory: explicit value, then VIBEWRITE_CACHE_DIR,
// then the user cache directory.
func Dir(explicit string) string {
	if dir := strings.TrimSpace(explicit); dir != "" {
		return dir
	}
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(os.TempDir(), "vibewrite-cache")
	}
	return filepath.Join(base, cacheSubdir)
}

// Open creates the directory if needed. A non-positive ttl keeps entries
// forever.
func Open(dir string, ttl time.Duration) (*DiskCache, error) {
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Path returns the directory backing the cache.
func (c *DiskCache) Path() string {
	return c.dir
}

// Get returns the cached text for key. Expired, foreign or unreadable
// entries count as misses; only I/O failures other than absence are errors.
func (c *DiskCache) Get(key string) (string, bool, error) {
	if c == nil {
		return "", false, nil
	}
	path, err := c.pathFor(key)
	if err != nil {
		return "", false, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	var e entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return "", false, nil
	}
	if e.Schema != schemaVersion || e.Key != key {
		return "", false, nil
	}
	if c.ttl > 0 && c.now().Sub(e.CachedAt) > c.ttl {
		return "", false, nil
	}
	return e.Text, true, nil
}

// Put writes text under key, replacing any previous entry atomically.
func (c *DiskCache) Put(key, text string) error {
	if c == nil {
		return nil
	}
	path, err := c.pathFor(key)
	if err != nil {
		return err
	}
	data, err := msgpack.Marshal(&entry{Schema: schemaVersion, Key: key, Text: text, CachedAt: c.now().UTC()})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.CreateTemp(c.dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Purge deletes every entry.
func (c *DiskCache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	matches, err := filepath.Glob(filepath.Join(c.dir, "*"+entrySuffix))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (c *DiskCache) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\:`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid cache key %q", key)
	}
	return filepath.Join(c.dir, key+entrySuffix), nil
}
