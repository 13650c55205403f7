package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok, err := cache.Get("abc123"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
	if err := cache.Put("abc123", "They're going to the store."); err != nil {
		t.Fatalf("Put: %v", err)
	}
	text, ok, err := cache.Get("abc123")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if text != "They're going to the store." {
		t.Fatalf("unexpected text %q", text)
	}

	if err := cache.Put("abc123", "Replaced."); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if text, _, _ := cache.Get("abc123"); text != "Replaced." {
		t.Fatalf("expected overwrite, got %q", text)
	}

	leftovers, _ := filepath.Glob(filepath.Join(cache.Path(), "tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temporary files left behind: %v", leftovers)
	}
}

func TestDiskCacheExpiresEntries(t *testing.T) {
	cache, err := Open(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Put("k", "value"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	now = now.Add(30 * time.Minute)
	if _, ok, _ := cache.Get("k"); !ok {
		t.Fatal("expected fresh entry to hit")
	}
	now = now.Add(2 * time.Hour)
	if _, ok, _ := cache.Get("k"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestDiskCacheIgnoresCorruptEntries(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad"+entrySuffix), []byte("not msgpack at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := cache.Get("bad"); ok || err != nil {
		t.Fatalf("corrupt entry should be a miss, got ok=%v err=%v", ok, err)
	}
}

func TestDiskCacheRejectsPathKeys(t *testing.T) {
	cache, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/b", `c:\d`} {
		if err := cache.Put(key, "x"); err == nil {
			t.Fatalf("expected Put(%q) to fail", key)
		}
	}
}

func TestDiskCachePurge(t *testing.T) {
	cache, err := Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, key := range []string{"one", "two"} {
		if err := cache.Put(key, key); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := cache.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if _, ok, _ := cache.Get("one"); ok {
		t.Fatal("expected purge to drop entries")
	}
}

func TestDirResolution(t *testing.T) {
	t.Setenv(EnvDir, "/tmp/from-env")
	if got := Dir("  /tmp/explicit "); got != "/tmp/explicit" {
		t.Fatalf("explicit dir ignored: %s", got)
	}
	if got := Dir(""); got != "/tmp/from-env" {
		t.Fatalf("env dir ignored: %s", got)
	}
	t.Setenv(EnvDir, "")
	if got := Dir(""); filepath.Base(got) != "revisions" {
		t.Fatalf("unexpected default dir: %s", got)
	}
}

func TestNilCacheIsInert(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put("k", "v"); err != nil {
		t.Fatalf("nil Put: %v", err)
	}
	if _, ok, err := cache.Get("k"); ok || err != nil {
		t.Fatalf("nil Get: ok=%v err=%v", ok, err)
	}
}
