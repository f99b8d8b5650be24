package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/track"
)

func testIdentity() *track.Identity {
	return &track.Identity{
		Artist:   "Arctic Monkeys",
		Title:    "Do I Wanna Know?",
		Album:    "AM",
		Duration: 272,
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lyrics.json")
	id := testIdentity()

	raw := "[00:10.00]first\n[00:20.00]second\n"
	wantDoc, err := lyrics.Parse(lyrics.FormatLRC, raw, "lrclib")
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}

	store := Open(path)
	err = store.Put(id, &Entry{
		Artist:   id.Artist,
		Title:    id.Title,
		Album:    id.Album,
		Duration: id.Duration,
		Format:   lyrics.FormatLRC,
		Raw:      raw,
		Provider: "lrclib",
	})
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// reload from disk and re-parse
	reloaded := Open(path)
	entry, err := reloaded.Get(id)
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if entry.Format != lyrics.FormatLRC || entry.Provider != "lrclib" {
		t.Errorf("entry tags = (%q, %q)", entry.Format, entry.Provider)
	}

	gotDoc, err := lyrics.Parse(entry.Format, entry.Raw, entry.Provider)
	if err != nil {
		t.Fatalf("re-parse error = %v", err)
	}
	if len(gotDoc.Lines) != len(wantDoc.Lines) {
		t.Fatalf("re-parsed %d lines, want %d", len(gotDoc.Lines), len(wantDoc.Lines))
	}
	for i := range wantDoc.Lines {
		if gotDoc.Lines[i].Start != wantDoc.Lines[i].Start || gotDoc.Lines[i].Text != wantDoc.Lines[i].Text {
			t.Errorf("line %d differs after round trip", i)
		}
	}
}

func TestGetMiss(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "lyrics.json"))
	if _, err := store.Get(testIdentity()); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on empty store = %v, want ErrCacheMiss", err)
	}
	if _, err := store.Get(nil); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get(nil) = %v, want ErrCacheMiss", err)
	}
}

func TestKeyInsensitivity(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "lyrics.json"))
	id := testIdentity()

	if err := store.Put(id, &Entry{Format: lyrics.FormatLRC, Raw: "[00:01.00]x"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	shouted := &track.Identity{Artist: "ARCTIC MONKEYS", Title: "do i wanna know?", Album: " am "}
	if _, err := store.Get(shouted); err != nil {
		t.Errorf("case-variant lookup failed: %v", err)
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lyrics.json")

	blob := `{
		"entries": {
			"artist|title|": {
				"artist": "artist",
				"title": "title",
				"format": "lrc",
				"raw": "[00:01.00]hi",
				"created_at": 1700000000,
				"some_future_field": {"nested": true}
			}
		},
		"unknown_top_level": 42
	}`
	if err := os.WriteFile(path, []byte(blob), 0o644); err != nil {
		t.Fatal(err)
	}

	store := Open(path)
	if store.Disabled() {
		t.Fatal("forward-compatible file should not disable the cache")
	}
	entry, err := store.Get(&track.Identity{Artist: "Artist", Title: "Title"})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if entry.Raw != "[00:01.00]hi" {
		t.Errorf("raw payload = %q", entry.Raw)
	}
}

func TestCorruptFileDisables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lyrics.json")
	if err := os.WriteFile(path, []byte("{definitely not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := Open(path)
	if !store.Disabled() {
		t.Fatal("corrupt file should disable the cache")
	}
	if err := store.Put(testIdentity(), &Entry{Format: lyrics.FormatLRC, Raw: "x"}); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("Put() on disabled store = %v, want ErrCacheDisabled", err)
	}
}

func TestClearAndDelete(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "lyrics.json"))
	id := testIdentity()

	if err := store.Put(id, &Entry{Format: lyrics.FormatLRC, Raw: "x"}); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() after delete = %d", store.Len())
	}

	if err := store.Put(id, &Entry{Format: lyrics.FormatLRC, Raw: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() after clear = %d", store.Len())
	}
}
