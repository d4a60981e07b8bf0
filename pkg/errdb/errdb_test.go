package errdb

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load of missing file: got %v, want fs.ErrNotExist", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_codes.xml")
	if err := os.WriteFile(path, []byte("<errorCodes><errorCode>"), 0o644); err != nil {
		t.Fatalf("Cannot write test file: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load of corrupt file: got %v, want ErrCorrupt", err)
	}
}

func TestMergePersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "error_codes.xml")

	db := New()
	db.Merge([]Entry{
		{Code: "80810001", Description: "Fatal shutdown", Source: SourceOnline},
		{Code: "CE-10005-6", Description: "Drive error & <retry>", Source: SourceOnline},
	})
	if err := db.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	fresh, err := Load(path)
	if err != nil {
		t.Fatalf("Load after Persist: %v", err)
	}
	if fresh.Len() != 2 {
		t.Fatalf("Reloaded database has %d entries, want 2", fresh.Len())
	}
	e, ok := fresh.Lookup("CE-10005-6")
	if !ok || e.Description != "Drive error & <retry>" {
		t.Fatalf("Lookup after reload = %+v, %t", e, ok)
	}
	// A reloaded entry counts as offline regardless of how it got there.
	if e.Source != SourceOffline {
		t.Fatalf("Reloaded entry source = %q, want %q", e.Source, SourceOffline)
	}
}

func TestMergeAloneNeverPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_codes.xml")

	db := New()
	db.Merge([]Entry{{Code: "80810001", Description: "Fatal shutdown"}})
	if err := db.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	db.Merge([]Entry{{Code: "80810002", Description: "Thermal trip"}})

	fresh, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := fresh.Lookup("80810002"); ok {
		t.Fatal("Merge without Persist leaked to disk")
	}
	if fresh.Len() != 1 {
		t.Fatalf("On-disk database has %d entries, want 1", fresh.Len())
	}
}

func TestMergeLastWriteWins(t *testing.T) {
	db := New()
	db.Merge([]Entry{{Code: "80810001", Description: "old", Source: SourceOffline}})
	db.Merge([]Entry{{Code: "80810001", Description: "new", Source: SourceOnline}})
	e, ok := db.Lookup("80810001")
	if !ok || e.Description != "new" || e.Source != SourceOnline {
		t.Fatalf("Lookup after overwrite = %+v, %t", e, ok)
	}
	if db.Len() != 1 {
		t.Fatalf("Len = %d, want 1", db.Len())
	}
}

func TestPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "error_codes.xml")

	db := New()
	db.Merge([]Entry{{Code: "80810001", Description: "Fatal shutdown"}})
	if err := db.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := db.Persist(path); err != nil {
		t.Fatalf("Second Persist: %v", err)
	}

	glob, err := filepath.Glob(filepath.Join(dir, ".errorcodes-*"))
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(glob) != 0 {
		t.Fatalf("Temp files left behind: %v", glob)
	}
}

func TestEntriesSorted(t *testing.T) {
	db := New()
	db.Merge([]Entry{
		{Code: "CE-10005-6", Description: "b"},
		{Code: "80810001", Description: "a"},
	})
	got := db.Entries()
	if len(got) != 2 || got[0].Code != "80810001" || got[1].Code != "CE-10005-6" {
		t.Fatalf("Entries() = %+v, want sorted by code", got)
	}
}

func TestPersistedDocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "error_codes.xml")
	db := New()
	db.Merge([]Entry{{Code: "80810001", Description: "Fatal shutdown"}})
	if err := db.Persist(path); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(raw)
	for _, want := range []string{"<errorCodes>", "<errorCode>", "<ErrorCode>80810001</ErrorCode>", "<Description>Fatal shutdown</Description>"} {
		if !strings.Contains(text, want) {
			t.Fatalf("Persisted document missing %q:\n%s", want, text)
		}
	}
}
