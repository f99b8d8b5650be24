package player

import (
	"math"
	"testing"
	"time"

	"verso.dev/verso/internal/track"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testTracker() (*Tracker, *fakeClock) {
	clock := newFakeClock()
	tr := NewTracker()
	tr.now = clock.now
	return tr, clock
}

func TestTrackerExtrapolatesWhilePlaying(t *testing.T) {
	tr, clock := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "t", Duration: 300})
	tr.SetPlaying(true)
	tr.Seek(10)

	clock.advance(5 * time.Second)

	if got := tr.Position(); math.Abs(got-15) > 0.001 {
		t.Errorf("Position() = %v, want 15", got)
	}
}

func TestTrackerFreezesWhilePaused(t *testing.T) {
	tr, clock := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "t", Duration: 300})
	tr.SetPlaying(true)
	tr.Seek(10)

	clock.advance(5 * time.Second)
	tr.SetPlaying(false)
	clock.advance(30 * time.Second)

	if got := tr.Position(); math.Abs(got-15) > 0.001 {
		t.Errorf("Position() after pause = %v, want 15", got)
	}

	tr.SetPlaying(true)
	clock.advance(2 * time.Second)

	if got := tr.Position(); math.Abs(got-17) > 0.001 {
		t.Errorf("Position() after resume = %v, want 17", got)
	}
}

func TestTrackerClampsToDuration(t *testing.T) {
	tr, clock := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "t", Duration: 20})
	tr.SetPlaying(true)
	tr.Seek(15)

	clock.advance(time.Minute)

	if got := tr.Position(); got != 20 {
		t.Errorf("Position() = %v, want clamped to 20", got)
	}
}

func TestTrackerSanitizesPositions(t *testing.T) {
	tr, _ := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "t"})

	tr.Seek(math.NaN())
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after NaN seek = %v, want 0", got)
	}

	tr.Seek(-5)
	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after negative seek = %v, want 0", got)
	}
}

func TestTrackerSetTrackDetectsChange(t *testing.T) {
	tr, _ := testTracker()

	a := &track.Identity{Artist: "Band", Title: "One"}
	if !tr.SetTrack(a) {
		t.Error("first SetTrack should report a change")
	}
	if tr.SetTrack(&track.Identity{Artist: "band", Title: "ONE"}) {
		t.Error("same identity with different casing should not report a change")
	}
	if !tr.SetTrack(&track.Identity{Artist: "Band", Title: "Two"}) {
		t.Error("different title should report a change")
	}
}

func TestTrackerDuplicateSignalKeepsAnchor(t *testing.T) {
	tr, clock := testTracker()
	id := &track.Identity{Artist: "a", Title: "t", Duration: 300}

	tr.SetTrack(id)
	tr.SetPlaying(true)
	tr.Seek(40)
	clock.advance(2 * time.Second)

	tr.SetTrack(id)

	if got := tr.Position(); math.Abs(got-42) > 0.001 {
		t.Errorf("Position() after duplicate signal = %v, want 42", got)
	}
}

func TestTrackerNewTrackRewindsAnchor(t *testing.T) {
	tr, _ := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "one"})
	tr.Seek(100)

	tr.SetTrack(&track.Identity{Artist: "a", Title: "two"})

	if got := tr.Position(); got != 0 {
		t.Errorf("Position() after track change = %v, want 0", got)
	}
}

func TestTrackerLateDurationUpdate(t *testing.T) {
	tr, _ := testTracker()
	tr.SetTrack(&track.Identity{Artist: "a", Title: "t"})

	if tr.SetTrack(&track.Identity{Artist: "a", Title: "t", Duration: 180}) {
		t.Error("duration-only update should not report a change")
	}
	if got := tr.Track().Duration; got != 180 {
		t.Errorf("Track().Duration = %v, want 180", got)
	}
}

func TestTrackerStatus(t *testing.T) {
	tr, _ := testTracker()

	if got := tr.Status(); got != StatusNoPlayer {
		t.Errorf("Status() = %v, want StatusNoPlayer", got)
	}

	tr.SetTrack(&track.Identity{Artist: "a", Title: "t"})
	if got := tr.Status(); got != StatusPaused {
		t.Errorf("Status() = %v, want StatusPaused", got)
	}

	tr.SetPlaying(true)
	if got := tr.Status(); got != StatusPlaying {
		t.Errorf("Status() = %v, want StatusPlaying", got)
	}

	tr.Clear()
	if got := tr.Status(); got != StatusNoPlayer {
		t.Errorf("Status() after Clear = %v, want StatusNoPlayer", got)
	}
}
