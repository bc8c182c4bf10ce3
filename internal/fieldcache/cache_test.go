package fieldcache

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T, dsn string) *Store {
	t.Helper()
	store, err := NewStore(dsn)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestStorePutGet(t *testing.T) {
	store := newTestStore(t, ":memory:")
	defer store.Close()

	if _, ok := store.Get("base_url"); ok {
		t.Fatalf("expected no value for fresh key")
	}
	if err := store.Put("base_url", "http://example.com/"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok := store.Get("base_url")
	if !ok || got != "http://example.com/" {
		t.Fatalf("unexpected value: %q, %v", got, ok)
	}

	// Overwrite is last-writer-wins.
	if err := store.Put("base_url", "http://other.example/"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, _ = store.Get("base_url")
	if got != "http://other.example/" {
		t.Fatalf("unexpected value after overwrite: %q", got)
	}
}

func TestFieldRestoresAcrossRestart(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "fields.db")

	store := newTestStore(t, dsn)
	name := NewField(store, "name")
	name.Set("pierre")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Simulated restart: a fresh store over the same file.
	store2 := newTestStore(t, dsn)
	defer store2.Close()
	restored := NewField(store2, "name")
	if restored.Value() != "pierre" {
		t.Fatalf("expected restored value %q, got %q", "pierre", restored.Value())
	}
}

func TestFieldVerbatimStrings(t *testing.T) {
	store := newTestStore(t, ":memory:")
	defer store.Close()

	// Any string is accepted and echoed back, including empty and odd ones.
	for _, v := range []string{"", " ", "héllo\nworld", `{"json":true}`} {
		f := NewField(store, "k")
		f.Set(v)
		if got := NewField(store, "k").Value(); got != v {
			t.Fatalf("expected %q, got %q", v, got)
		}
	}
}

func TestFieldWithoutStore(t *testing.T) {
	// Storage unavailable: the field still works in memory.
	f := NewField(nil, "title")
	f.Set("hello")
	if f.Value() != "hello" {
		t.Fatalf("unexpected value: %q", f.Value())
	}
}

func TestFieldWriteFailureIsNonFatal(t *testing.T) {
	store := newTestStore(t, ":memory:")
	store.Close()

	// Writes against the closed store are skipped silently.
	f := NewField(store, "title")
	f.Set("hello")
	if f.Value() != "hello" {
		t.Fatalf("unexpected value: %q", f.Value())
	}
}
