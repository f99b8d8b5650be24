// Package cache persists raw lyrics payloads per track in a single JSON
// file. The raw payload is stored rather than parsed lines, so a parser
// fix upgrades old entries for free on the next load.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/track"
)

const cacheDirName = "verso"

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrCacheDisabled = errors.New("cache disabled")
)

var logger = log.With().Str("component", "cache").Logger()

// Entry is one cached track. Unknown fields in a loaded record are
// ignored by encoding/json, which keeps old files forward compatible.
type Entry struct {
	Artist     string        `json:"artist"`
	Title      string        `json:"title"`
	Album      string        `json:"album,omitempty"`
	Duration   float64       `json:"duration,omitempty"`
	Format     lyrics.Format `json:"format"`
	Raw        string        `json:"raw"`
	Provider   string        `json:"provider,omitempty"`
	SyncOffset float64       `json:"sync_offset,omitempty"`
	CreatedAt  int64         `json:"created_at"`
}

type fileLayout struct {
	Entries map[string]*Entry `json:"entries"`
}

// Store is the on-disk lyrics cache. The whole file is read once at
// construction and rewritten atomically after every change; the process
// is single-instance per cache file so there is no cross-process locking.
type Store struct {
	path     string
	mu       sync.RWMutex
	entries  map[string]*Entry
	disabled bool
}

// DefaultPath resolves the cache file location under XDG_CACHE_HOME,
// falling back to ~/.cache.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, cacheDirName, "lyrics.json"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", cacheDirName, "lyrics.json"), nil
}

// Open loads the cache file at path. A missing file yields an empty
// store; an unreadable or corrupt file logs a warning and returns a
// disabled store rather than an error, so lyrics still work for the
// session without persistence.
func Open(path string) *Store {
	s := &Store{path: path, entries: make(map[string]*Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s
		}
		logger.Warn().Err(err).Str("path", path).Msg("cache file unreadable, caching disabled for this session")
		s.disabled = true
		return s
	}

	var layout fileLayout
	if err := json.Unmarshal(data, &layout); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("cache file corrupt, caching disabled for this session")
		s.disabled = true
		return s
	}
	if layout.Entries != nil {
		s.entries = layout.Entries
	}

	logger.Debug().Int("entries", len(s.entries)).Str("path", path).Msg("cache loaded")
	return s
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Disabled reports whether the store is running without persistence.
func (s *Store) Disabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disabled
}

// Get returns the cached entry for an identity, or ErrCacheMiss.
func (s *Store) Get(id *track.Identity) (*Entry, error) {
	if id == nil || !id.Valid() {
		return nil, ErrCacheMiss
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id.Key()]
	if !ok {
		return nil, ErrCacheMiss
	}
	copied := *entry
	return &copied, nil
}

// Put stores an entry under the identity's key and rewrites the file.
// Write failures disable persistence for the rest of the session; the
// in-memory copy keeps working.
func (s *Store) Put(id *track.Identity, entry *Entry) error {
	if id == nil || !id.Valid() || entry == nil {
		return errors.New("invalid cache entry")
	}

	stored := *entry
	if stored.CreatedAt == 0 {
		stored.CreatedAt = time.Now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id.Key()] = &stored
	return s.persistLocked()
}

// SyncOffset returns the stored per-track lyric offset in seconds, or
// zero when the track has no entry.
func (s *Store) SyncOffset(id *track.Identity) float64 {
	entry, err := s.Get(id)
	if err != nil {
		return 0
	}
	return entry.SyncOffset
}

// SetSyncOffset updates the offset on an existing entry. Tracks without
// a cached payload have nowhere to hang the offset, so this is a no-op
// for them.
func (s *Store) SetSyncOffset(id *track.Identity, offset float64) error {
	if id == nil || !id.Valid() {
		return errors.New("invalid identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id.Key()]
	if !ok {
		return nil
	}
	entry.SyncOffset = offset
	return s.persistLocked()
}

// Delete removes the entry for an identity, if present.
func (s *Store) Delete(id *track.Identity) error {
	if id == nil {
		return errors.New("nil identity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id.Key()]; !ok {
		return nil
	}
	delete(s.entries, id.Key())
	return s.persistLocked()
}

// Clear drops every entry and rewrites the file.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return s.persistLocked()
}

// List returns all entries, for the cache subcommands.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		copied := *e
		out = append(out, &copied)
	}
	return out
}

// Len returns the number of cached tracks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// persistLocked rewrites the whole file via write-then-rename. Callers
// hold s.mu.
func (s *Store) persistLocked() error {
	if s.disabled {
		return ErrCacheDisabled
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return s.disableLocked(err)
	}

	data, err := json.MarshalIndent(fileLayout{Entries: s.entries}, "", "  ")
	if err != nil {
		return s.disableLocked(err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return s.disableLocked(err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return s.disableLocked(err)
	}
	return nil
}

func (s *Store) disableLocked(err error) error {
	logger.Warn().Err(err).Str("path", s.path).Msg("cache write failed, persistence disabled for this session")
	s.disabled = true
	return err
}
