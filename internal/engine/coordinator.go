// Package engine owns the playback state and the active lyric document.
// A single goroutine multiplexes player events, lyric fetch results, and
// a sub-second tick; everything downstream sees immutable snapshots.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/player"
	"verso.dev/verso/internal/track"
)

var engineLogger = log.With().Str("component", "engine").Logger()

const defaultTick = 100 * time.Millisecond

// Fetcher resolves a track identity to a parsed lyric document.
type Fetcher interface {
	Fetch(ctx context.Context, id *track.Identity) (*lyrics.Document, error)
}

// OffsetStore persists the per-track lyric offset.
type OffsetStore interface {
	SyncOffset(id *track.Identity) float64
	SetSyncOffset(id *track.Identity, offset float64) error
}

// Snapshot is one immutable view of the engine state. The document
// pointer is shared but never mutated after parse.
type Snapshot struct {
	Track     *track.Identity
	ArtURL    string
	Status    player.Status
	Position  float64
	Doc       *lyrics.Document
	Highlight lyrics.Highlight
	WordSync  bool
	Offset    float64
	Err       error
}

// fetchResult carries a finished lookup back into the loop, tagged with
// the identity key it was started for.
type fetchResult struct {
	key string
	doc *lyrics.Document
	err error
}

// Coordinator drives the whole engine. All mutable state is confined to
// the Run goroutine; external callers interact through the player event
// channel, the snapshot channel, and the offset adjustment channel.
type Coordinator struct {
	events   <-chan player.EventData
	fetcher  Fetcher
	offsets  OffsetStore
	tracker  *player.Tracker
	tick     time.Duration
	results  chan fetchResult
	adjust   chan float64
	snapshot chan Snapshot

	// loop-owned state
	artURL        string
	doc           *lyrics.Document
	docErr        error
	offset        float64
	lastHighlight lyrics.Highlight
	cancelFetch   context.CancelFunc
}

func NewCoordinator(events <-chan player.EventData, fetcher Fetcher, offsets OffsetStore) *Coordinator {
	return &Coordinator{
		events:        events,
		fetcher:       fetcher,
		offsets:       offsets,
		tracker:       player.NewTracker(),
		tick:          defaultTick,
		results:       make(chan fetchResult, 1),
		adjust:        make(chan float64, 4),
		snapshot:      make(chan Snapshot, 1),
		lastHighlight: lyrics.NoHighlight,
	}
}

// SetTick overrides the re-resolve interval.
func (c *Coordinator) SetTick(d time.Duration) {
	if d > 0 {
		c.tick = d
	}
}

// Snapshots delivers the latest engine state. The channel holds only the
// most recent snapshot; slow consumers skip intermediates instead of
// backing up the loop.
func (c *Coordinator) Snapshots() <-chan Snapshot {
	return c.snapshot
}

// AdjustOffset shifts the lyric offset for the current track by delta
// seconds. Safe to call from any goroutine.
func (c *Coordinator) AdjustOffset(delta float64) {
	select {
	case c.adjust <- delta:
	default:
	}
}

// Seed installs an initial player state before Run starts, usually from
// a startup poll.
func (c *Coordinator) Seed(ev player.EventData) {
	c.tracker.SetTrack(ev.Track)
	c.tracker.Seek(ev.Position)
	c.tracker.SetPlaying(ev.Playing)
	c.artURL = ev.ArtURL
	if ev.Track != nil {
		c.offset = c.syncOffset(ev.Track)
	}
}

// Run blocks until the context is cancelled or the player event channel
// closes. The loop goroutine is the only writer of engine state.
func (c *Coordinator) Run(ctx context.Context) error {
	defer c.stopFetch()

	if id := c.tracker.Track(); id != nil {
		c.startFetch(ctx, id)
	}
	c.publish()

	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-c.events:
			if !ok {
				return nil
			}
			c.handlePlayerEvent(ctx, ev)

		case res := <-c.results:
			c.handleFetchResult(res)

		case delta := <-c.adjust:
			c.handleOffsetAdjust(delta)

		case <-ticker.C:
			c.handleTick()
		}
	}
}

func (c *Coordinator) handlePlayerEvent(ctx context.Context, ev player.EventData) {
	switch ev.Type {
	case player.EventTrackChanged:
		if !c.tracker.SetTrack(ev.Track) {
			return
		}
		c.stopFetch()
		c.doc = nil
		c.docErr = nil
		c.artURL = ev.ArtURL
		c.offset = 0

		id := c.tracker.Track()
		if id == nil {
			engineLogger.Debug().Msg("track cleared")
			c.publish()
			return
		}

		engineLogger.Info().
			Str("artist", id.Artist).
			Str("title", id.Title).
			Msg("track changed")
		c.offset = c.syncOffset(id)
		c.startFetch(ctx, id)
		c.publish()

	case player.EventSeeked:
		c.tracker.Seek(ev.Position)
		c.publish()

	case player.EventPlaybackChanged:
		c.tracker.SetPlaying(ev.Playing)
		c.publish()

	case player.EventPlayerGone:
		c.stopFetch()
		c.tracker.Clear()
		c.doc = nil
		c.docErr = nil
		c.artURL = ""
		c.offset = 0
		c.publish()
	}
}

// startFetch launches one lookup for the given identity. A previous
// in-flight lookup must already be cancelled.
func (c *Coordinator) startFetch(ctx context.Context, id *track.Identity) {
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel

	key := id.Key()
	go func() {
		doc, err := c.fetcher.Fetch(fetchCtx, id)
		select {
		case c.results <- fetchResult{key: key, doc: doc, err: err}:
		case <-fetchCtx.Done():
		}
	}()
}

func (c *Coordinator) stopFetch() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
}

// handleFetchResult commits a lookup only when it still belongs to the
// current track. Results for a superseded track are dropped even if the
// cancellation raced the network reply.
func (c *Coordinator) handleFetchResult(res fetchResult) {
	current := c.tracker.Track()
	if current == nil || current.Key() != res.key {
		engineLogger.Debug().Str("key", res.key).Msg("dropping stale lyric result")
		return
	}

	c.doc = res.doc
	c.docErr = res.err
	if res.err != nil {
		engineLogger.Debug().Err(res.err).Str("title", current.Title).Msg("no lyrics for track")
	}
	c.publish()
}

func (c *Coordinator) handleOffsetAdjust(delta float64) {
	id := c.tracker.Track()
	if id == nil {
		return
	}

	c.offset += delta
	if c.offsets != nil {
		if err := c.offsets.SetSyncOffset(id, c.offset); err != nil {
			engineLogger.Warn().Err(err).Msg("failed to persist sync offset")
		}
	}
	c.publish()
}

// handleTick re-resolves the highlight from the extrapolated position.
// It publishes only when the highlight moved; the position itself is
// cheap for consumers to extrapolate between snapshots.
func (c *Coordinator) handleTick() {
	if c.doc == nil {
		return
	}

	highlight := lyrics.Resolve(c.doc, c.tracker.Position()+c.offset)
	if highlight == c.lastHighlight {
		return
	}
	c.publish()
}

func (c *Coordinator) syncOffset(id *track.Identity) float64 {
	if c.offsets == nil {
		return 0
	}
	return c.offsets.SyncOffset(id)
}

// publish replaces whatever snapshot the consumer has not read yet.
func (c *Coordinator) publish() {
	position := c.tracker.Position()
	snap := Snapshot{
		Track:    c.tracker.Track(),
		ArtURL:   c.artURL,
		Status:   c.tracker.Status(),
		Position: position,
		Doc:      c.doc,
		Offset:   c.offset,
		Err:      c.docErr,
	}
	snap.Highlight = lyrics.Resolve(c.doc, position+c.offset)
	snap.WordSync = c.doc.WordSynced()
	c.lastHighlight = snap.Highlight

	select {
	case c.snapshot <- snap:
	default:
		select {
		case <-c.snapshot:
		default:
		}
		c.snapshot <- snap
	}
}
