package providers

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/cache"
	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/track"
)

// ErrNotFound means every configured provider was tried and none
// produced usable lyrics for the track.
var ErrNotFound = errors.New("lyrics not found")

const defaultLookupTimeout = 10 * time.Second

var orchestratorLogger = log.With().Str("component", "orchestrator").Logger()

// Orchestrator resolves a track identity to a parsed lyric document,
// consulting the local cache before the providers and writing fresh
// payloads back. Providers are tried strictly in configured order; the
// first usable result wins.
type Orchestrator struct {
	providers []Provider
	store     *cache.Store
	timeout   time.Duration
}

func NewOrchestrator(providers []Provider, store *cache.Store) *Orchestrator {
	return &Orchestrator{
		providers: providers,
		store:     store,
		timeout:   defaultLookupTimeout,
	}
}

// SetTimeout overrides the per-provider lookup deadline.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	if d > 0 {
		o.timeout = d
	}
}

// Fetch resolves lyrics for the track. The cache stores raw payloads, so
// cached entries go through the same parser as fresh ones; a cached
// payload that no longer parses is evicted and the providers are
// consulted again.
func (o *Orchestrator) Fetch(ctx context.Context, id *track.Identity) (*lyrics.Document, error) {
	if id == nil || !id.Valid() {
		return nil, ErrNotFound
	}

	if doc := o.fromCache(id); doc != nil {
		return doc, nil
	}

	for _, provider := range o.providers {
		doc, err := o.tryProvider(ctx, provider, id)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, ErrNotFound
}

func (o *Orchestrator) fromCache(id *track.Identity) *lyrics.Document {
	entry, err := o.store.Get(id)
	if err != nil {
		return nil
	}

	doc, err := lyrics.Parse(entry.Format, entry.Raw, entry.Provider)
	if err != nil {
		orchestratorLogger.Warn().
			Err(err).
			Str("provider", entry.Provider).
			Msg("cached payload no longer parses, evicting")
		o.store.Delete(id)
		return nil
	}

	orchestratorLogger.Debug().
		Str("provider", entry.Provider).
		Str("track", id.Title).
		Msg("cache hit")
	return doc
}

func (o *Orchestrator) tryProvider(ctx context.Context, provider Provider, id *track.Identity) (*lyrics.Document, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	result, err := provider.Lookup(lookupCtx, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotConfigured):
			// absent credential, not worth a log line per track
		case errors.Is(err, ErrNoMatch):
			orchestratorLogger.Debug().
				Str("provider", provider.Name()).
				Str("track", id.Title).
				Msg("no match")
		default:
			// transport and decode failures count as misses, the next
			// provider may still succeed
			orchestratorLogger.Warn().
				Err(err).
				Str("provider", provider.Name()).
				Msg("provider lookup failed")
		}
		return nil, err
	}

	doc, err := lyrics.Parse(result.Format, result.Raw, provider.Name())
	if err != nil {
		orchestratorLogger.Warn().
			Err(err).
			Str("provider", provider.Name()).
			Str("format", string(result.Format)).
			Msg("provider payload failed to parse")
		return nil, err
	}

	o.store.Put(id, &cache.Entry{
		Artist:   id.Artist,
		Title:    id.Title,
		Album:    id.Album,
		Duration: id.Duration,
		Format:   result.Format,
		Raw:      result.Raw,
		Provider: provider.Name(),
	})

	orchestratorLogger.Info().
		Str("provider", provider.Name()).
		Str("track", id.Title).
		Str("format", string(result.Format)).
		Msg("fetched lyrics")
	return doc, nil
}
