package track

import "strings"

// Identity describes the track currently reported by the player. Duration
// is in seconds and zero when the player did not report one.
type Identity struct {
	Artist   string
	Title    string
	Album    string
	Duration float64
}

// Valid reports whether the identity carries enough metadata to be worth
// tracking. Signals with neither artist nor title are dropped upstream.
func (t *Identity) Valid() bool {
	if t == nil {
		return false
	}
	return t.Artist != "" || t.Title != ""
}

// Key returns the normalized cache key for this identity. The key defines
// track equality everywhere: two identities with the same key are the same
// track. Duration does not participate.
func (t *Identity) Key() string {
	if t == nil {
		return ""
	}
	return normalize(t.Artist) + "|" + normalize(t.Title) + "|" + normalize(t.Album)
}

// Same compares two identities by cache key.
func (t *Identity) Same(other *Identity) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.Key() == other.Key()
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
