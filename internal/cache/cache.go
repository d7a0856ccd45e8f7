package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/nodpts/no-dpts/internal/types"
)

// Entry is the cached scan outcome for one staged blob.
type Entry struct {
	Hash     string                  `json:"hash"`
	Findings []types.SecurityFinding `json:"findings"`
}

// DB maps staged paths to the findings of their last scan. Methods are safe
// for concurrent use.
type DB struct {
	Entries map[string]Entry `json:"entries"`

	mu    sync.Mutex
	dirty bool
}

// FileName is the cache file kept inside the repository's git directory.
const FileName = "no-dpts-cache.json"

// Path is the cache location for gitDir. gitDir must be the resolved git
// directory, not the worktree, so the file never shows up as untracked.
func Path(gitDir string) string {
	return filepath.Join(gitDir, FileName)
}

// Key hashes content together with the scanner fingerprint, so editing the
// pattern set invalidates every entry.
func Key(fingerprint string, content []byte) string {
	h := xxhash.New()
	_, _ = h.WriteString(fingerprint)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	return strconv.FormatUint(h.Sum64(), 16)
}

// Load reads the cache stored in gitDir. On any error an empty, usable DB is
// returned alongside the error.
func Load(gitDir string) (*DB, error) {
	db := &DB{Entries: map[string]Entry{}}
	f, err := os.ReadFile(Path(gitDir))
	if err != nil {
		return db, err
	}
	if err := json.Unmarshal(f, db); err != nil {
		return &DB{Entries: map[string]Entry{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

// Lookup returns the cached findings for path when key still matches.
func (db *DB) Lookup(path, key string) ([]types.SecurityFinding, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	e, ok := db.Entries[path]
	if !ok || e.Hash != key {
		return nil, false
	}
	return append([]types.SecurityFinding(nil), e.Findings...), true
}

// Store records findings for path.
func (db *DB) Store(path, key string, findings []types.SecurityFinding) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if e, ok := db.Entries[path]; ok && e.Hash == key {
		return
	}
	db.Entries[path] = Entry{Hash: key, Findings: append([]types.SecurityFinding(nil), findings...)}
	db.dirty = true
}

// Len is the number of cached paths.
func (db *DB) Len() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.Entries)
}

// Save writes the cache into gitDir. Nothing is written when no entry changed
// since Load.
func Save(gitDir string, db *DB) error {
	if db == nil || db.Entries == nil {
		return errors.New("empty cache")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if !db.dirty {
		return nil
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(Path(gitDir), b, 0o644); err != nil {
		return err
	}
	db.dirty = false
	return nil
}
