package blob

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutFetchDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	key, err := store.Put("brief.pdf", []byte("pdf bytes"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("key %q lost original extension", key)
	}
	data, err := store.Fetch(key)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(data, []byte("pdf bytes")) {
		t.Errorf("fetched %q", data)
	}
	if err := store.Delete(key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Fetch(key); err == nil {
		t.Errorf("fetch succeeded after delete")
	}
}

func TestDeleteMissingNotAnError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := store.Delete("never-existed.txt"); err != nil {
		t.Errorf("missing blob delete errored: %v", err)
	}
}

func TestKeysAreUnique(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	first, _ := store.Put("same.txt", []byte("a"))
	second, _ := store.Put("same.txt", []byte("b"))
	if first == second {
		t.Errorf("same original name produced the same key")
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, key := range []string{"../escape.txt", "..", "/etc/passwd", "a/../../b", ""} {
		if _, err := store.Fetch(key); err == nil {
			t.Errorf("traversal key %q accepted", key)
		}
	}
}

func TestNewStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "blobs")
	store, err := NewStore(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Root() != root {
		t.Errorf("root = %q, want %q", store.Root(), root)
	}
	if _, err := store.Put("x.txt", []byte("x")); err != nil {
		t.Errorf("put into created root: %v", err)
	}
}
