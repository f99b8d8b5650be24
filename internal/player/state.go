package player

import (
	"math"
	"sync"
	"time"

	"verso.dev/verso/internal/track"
)

// Status is the tracker's coarse state.
type Status int

const (
	// StatusNoPlayer means no player is on the bus or the current track
	// has no usable identity.
	StatusNoPlayer Status = iota
	StatusPaused
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "no player"
	}
}

// Tracker holds the current track identity and reconstructs the playback
// position between player updates. While playing, the position is the
// last reported anchor plus monotonic elapsed time; while paused, it is
// frozen at the anchor. Anything reported by the player is sanitized
// before it becomes the anchor.
type Tracker struct {
	mu       sync.RWMutex
	track    *track.Identity
	playing  bool
	anchor   float64
	anchorAt time.Time

	// overridable for tests
	now func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// SetTrack installs a new track identity and rewinds the anchor to zero.
// Returns true when the identity actually changed; duplicate metadata
// signals for the same track return false and leave the anchor alone.
func (t *Tracker) SetTrack(id *track.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == nil || !id.Valid() {
		had := t.track != nil
		t.track = nil
		t.anchor = 0
		t.anchorAt = t.now()
		return had
	}

	if t.track != nil && t.track.Same(id) {
		// duration sometimes arrives late, keep the freshest copy
		if id.Duration > 0 {
			t.track.Duration = id.Duration
		}
		return false
	}

	copied := *id
	t.track = &copied
	t.anchor = 0
	t.anchorAt = t.now()
	return true
}

// Clear drops the track entirely, used when the player leaves the bus.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.track = nil
	t.playing = false
	t.anchor = 0
	t.anchorAt = t.now()
}

// Seek re-anchors the position.
func (t *Tracker) Seek(position float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.anchor = sanitizePosition(position)
	t.anchorAt = t.now()
}

// SetPlaying toggles playback. Pausing freezes the position at its
// current extrapolated value so a later resume continues from there.
func (t *Tracker) SetPlaying(playing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playing == playing {
		return
	}

	t.anchor = t.positionLocked()
	t.anchorAt = t.now()
	t.playing = playing
}

// Position returns the current playback position in seconds.
func (t *Tracker) Position() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.positionLocked()
}

func (t *Tracker) positionLocked() float64 {
	pos := t.anchor
	if t.playing && !t.anchorAt.IsZero() {
		pos += t.now().Sub(t.anchorAt).Seconds()
	}
	if t.track != nil && t.track.Duration > 0 && pos > t.track.Duration {
		pos = t.track.Duration
	}
	return sanitizePosition(pos)
}

// Track returns a copy of the current identity, or nil.
func (t *Tracker) Track() *track.Identity {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.track == nil {
		return nil
	}
	copied := *t.track
	return &copied
}

func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.track == nil:
		return StatusNoPlayer
	case t.playing:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

func sanitizePosition(pos float64) float64 {
	if math.IsNaN(pos) || math.IsInf(pos, 0) || pos < 0 {
		return 0
	}
	return pos
}
