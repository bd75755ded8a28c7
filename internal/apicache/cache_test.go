package apicache

import (
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKey_Format(t *testing.T) {
	key := Key("analysis", "0xcond_24")
	sum := md5.Sum([]byte("0xcond_24"))
	want := "analysis_" + hex.EncodeToString(sum[:])[:16]
	if key != want {
		t.Fatalf("key=%s want=%s", key, want)
	}
	if Key("analysis", "a") == Key("analysis", "b") {
		t.Fatalf("distinct ids must produce distinct keys")
	}
	if Key("analysis", "a") == Key("research", "a") {
		t.Fatalf("distinct types must produce distinct keys")
	}
}

func TestCache_RoundTripAndExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(t.TempDir(), time.Hour)
	c.Now = func() time.Time { return now }

	if _, ok := c.Get("analysis", "m1"); ok {
		t.Fatalf("empty cache should miss")
	}

	c.Set("analysis", "m1", []byte(`{"v":1}`))
	got, ok := c.Get("analysis", "m1")
	if !ok || string(got) != `{"v":1}` {
		t.Fatalf("got=%q ok=%v", got, ok)
	}

	now = now.Add(59 * time.Minute)
	if _, ok := c.Get("analysis", "m1"); !ok {
		t.Fatalf("entry should survive inside the TTL")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("analysis", "m1"); ok {
		t.Fatalf("entry should expire past the TTL")
	}
}

func TestCache_DiskTierSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := New(dir, time.Hour)
	first.Now = func() time.Time { return now }
	first.Set("research", "m1", []byte(`{"quality":"HIGH"}`))

	second := New(dir, time.Hour)
	second.Now = func() time.Time { return now.Add(time.Minute) }
	got, ok := second.Get("research", "m1")
	if !ok || string(got) != `{"quality":"HIGH"}` {
		t.Fatalf("disk tier lost the entry: got=%q ok=%v", got, ok)
	}

	if _, err := os.Stat(filepath.Join(dir, "index.json")); err != nil {
		t.Fatalf("index.json missing: %v", err)
	}
}

func TestCache_Sweep(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := New(dir, time.Hour)
	c.Now = func() time.Time { return now }

	c.Set("analysis", "old", []byte(`1`))
	now = now.Add(2 * time.Hour)
	c.Set("analysis", "fresh", []byte(`2`))

	removed := c.Sweep()
	if removed != 1 {
		t.Fatalf("removed=%d want=1", removed)
	}
	if _, ok := c.Get("analysis", "fresh"); !ok {
		t.Fatalf("fresh entry must survive the sweep")
	}
	if _, err := os.Stat(filepath.Join(dir, Key("analysis", "old")+".json")); !os.IsNotExist(err) {
		t.Fatalf("expired file should be removed from disk: %v", err)
	}
}

func TestCache_NilSafe(t *testing.T) {
	var c *Cache
	c.Set("analysis", "m1", []byte(`1`))
	if _, ok := c.Get("analysis", "m1"); ok {
		t.Fatalf("nil cache must miss")
	}
	if c.Sweep() != 0 {
		t.Fatalf("nil cache sweep must be a no-op")
	}
}
