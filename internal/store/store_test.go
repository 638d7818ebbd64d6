package store

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInstance_SetAndGet(t *testing.T) {
	tempDir := t.TempDir()
	in := Open(tempDir, "recent")

	if err := in.Set("archetypes", []string{"button", "image"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got []string
	if err := in.GetJSON("archetypes", &got); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}

	if len(got) != 2 || got[0] != "button" || got[1] != "image" {
		t.Errorf("GetJSON = %v; want [button image]", got)
	}
}

func TestInstance_GetMissing(t *testing.T) {
	in := Open(t.TempDir(), "screenshots")

	if _, err := in.Get("missing"); err != ErrNotFound {
		t.Errorf("Get missing key: got error %v; want %v", err, ErrNotFound)
	}
}

func TestInstance_Remove(t *testing.T) {
	in := Open(t.TempDir(), "session")

	if err := in.Set("key", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := in.Remove("key"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := in.Get("key"); err != ErrNotFound {
		t.Errorf("Get after remove: got error %v; want %v", err, ErrNotFound)
	}
	if err := in.Remove("key"); err != ErrNotFound {
		t.Errorf("Remove missing key: got error %v; want %v", err, ErrNotFound)
	}
}

func TestInstance_Keys(t *testing.T) {
	in := Open(t.TempDir(), "session")

	want := []string{"a", "b", "c"}
	for _, k := range want {
		if err := in.Set(k, k); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	keys, err := in.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != len(want) {
		t.Fatalf("Keys returned %d keys; want %d", len(keys), len(want))
	}

	seen := make(map[string]bool)
	for _, k := range keys {
		seen[k] = true
	}
	for _, k := range want {
		if !seen[k] {
			t.Errorf("Keys missing %q", k)
		}
	}
}

func TestInstance_PersistsAcrossOpens(t *testing.T) {
	tempDir := t.TempDir()

	in1 := Open(tempDir, "session")
	if err := in1.Set("count", 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	in2 := Open(tempDir, "session")
	var count int
	if err := in2.GetJSON("count", &count); err != nil {
		t.Fatalf("GetJSON after reopen failed: %v", err)
	}
	if count != 42 {
		t.Errorf("count = %d; want 42", count)
	}
}

func TestInstance_UpdatePreservesCreatedAt(t *testing.T) {
	in := Open(t.TempDir(), "session")

	if err := in.Set("key", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	e1, _ := in.Get("key")

	if err := in.Set("key", "v2"); err != nil {
		t.Fatalf("update Set failed: %v", err)
	}
	e2, _ := in.Get("key")

	if !e2.CreatedAt.Equal(e1.CreatedAt) {
		t.Errorf("CreatedAt changed on update: %v != %v", e2.CreatedAt, e1.CreatedAt)
	}
	if e2.Value != "v2" {
		t.Errorf("Value = %v; want v2", e2.Value)
	}
}

func TestInstance_Clear(t *testing.T) {
	tempDir := t.TempDir()
	in := Open(tempDir, "session")

	in.Set("a", 1)
	in.Set("b", 2)

	if err := in.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	n, err := in.Len()
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Len after clear = %d; want 0", n)
	}

	if _, err := os.Stat(filepath.Join(tempDir, StoreDir, "session.json")); !os.IsNotExist(err) {
		t.Errorf("backing file still exists after Clear")
	}
}

func TestInstances_Isolated(t *testing.T) {
	tempDir := t.TempDir()

	a := Open(tempDir, "recent")
	b := Open(tempDir, "session")

	a.Set("key", "from-a")

	if _, err := b.Get("key"); err != ErrNotFound {
		t.Errorf("instances share entries: got error %v; want %v", err, ErrNotFound)
	}
}
