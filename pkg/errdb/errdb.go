// Package errdb holds the knowledge base mapping console error codes to
// human-readable descriptions. The on-disk format is the XML document
// served by the community code database, so a downloaded document can be
// persisted verbatim-equivalent and reloaded offline.
package errdb

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Source records where a description came from.
type Source string

const (
	SourceOffline Source = "offline"
	SourceOnline  Source = "online"
)

// Entry is one code -> description mapping.
type Entry struct {
	Code        string
	Description string
	Source      Source
}

// ErrCorrupt means the database file exists but is not a valid document.
var ErrCorrupt = errors.New("error code database is corrupt")

// xmlDocument mirrors the wire schema:
//
//	<errorCodes><errorCode><ErrorCode/><Description/></errorCode></errorCodes>
type xmlDocument struct {
	XMLName xml.Name   `xml:"errorCodes"`
	Codes   []xmlEntry `xml:"errorCode"`
}

type xmlEntry struct {
	Code        string `xml:"ErrorCode"`
	Description string `xml:"Description"`
}

// DB is the in-memory index, one instance per process. Lookups are safe
// concurrently; Merge and Persist take the write lock so a reader never
// observes a half-updated index.
type DB struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty database, the first-run state before a download.
func New() *DB {
	return &DB{entries: make(map[string]Entry)}
}

// Load parses the knowledge base file at path. A missing file surfaces
// as fs.ErrNotExist so the caller can run first-run initialization; a
// present but unparseable file wraps ErrCorrupt.
func Load(path string) (*DB, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read error code database %q: %w", path, err)
	}
	var doc xmlDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrCorrupt, path, err)
	}
	db := New()
	for _, e := range doc.Codes {
		if e.Code == "" {
			continue
		}
		db.entries[e.Code] = Entry{Code: e.Code, Description: e.Description, Source: SourceOffline}
	}
	return db, nil
}

// Lookup returns the entry for code; the bool is false when the code is
// not in the index.
func (db *DB) Lookup(code string) (Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.entries[code]
	return e, ok
}

// Len returns the number of indexed codes.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

// Entries returns a snapshot of the index sorted by code.
func (db *DB) Entries() []Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]Entry, 0, len(db.entries))
	for _, e := range db.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Merge upserts entries into the in-memory index, last write wins. It
// never touches disk; the caller decides when to Persist.
func (db *DB) Merge(entries []Entry) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, e := range entries {
		if e.Code == "" {
			continue
		}
		db.entries[e.Code] = e
	}
}

// Persist writes the whole index to path through a temp file in the
// same directory plus a rename, so a crash mid-write never leaves a
// half-written database behind.
func (db *DB) Persist(path string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	doc := xmlDocument{Codes: make([]xmlEntry, 0, len(db.entries))}
	for _, e := range db.entries {
		doc.Codes = append(doc.Codes, xmlEntry{Code: e.Code, Description: e.Description})
	}
	sort.Slice(doc.Codes, func(i, j int) bool { return doc.Codes[i].Code < doc.Codes[j].Code })

	raw, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal error code database: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create database directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".errorcodes-*.xml")
	if err != nil {
		return fmt.Errorf("cannot create temp database file: %w", err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(append([]byte(xml.Header), raw...))
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(tmpName)
		if werr != nil {
			return fmt.Errorf("cannot write temp database file: %w", werr)
		}
		return fmt.Errorf("cannot close temp database file: %w", cerr)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cannot replace database file %q: %w", path, err)
	}
	return nil
}
