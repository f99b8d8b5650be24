package providers

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/match"
	"verso.dev/verso/internal/track"
)

const DefaultLrclibBaseURL = "https://lrclib.net/api"

var lrclibLogger = log.With().Str("component", "lrclib").Logger()

// lrclibRecord is the response shape shared by /get and /search.
type lrclibRecord struct {
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// Lrclib fetches LRC payloads from an lrclib-compatible API. It tries a
// direct /get by identity first and falls back to free-text /search
// filtered through the similarity matcher.
type Lrclib struct {
	baseURL string
}

func NewLrclib(baseURL string) *Lrclib {
	if baseURL == "" {
		baseURL = DefaultLrclibBaseURL
	}
	return &Lrclib{baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Lrclib) Name() string { return "lrclib" }

func (l *Lrclib) Lookup(ctx context.Context, id *track.Identity) (*Result, error) {
	if res, err := l.get(ctx, id); err == nil {
		return res, nil
	} else if !errors.Is(err, ErrNoMatch) {
		// transport or decode failure: still worth trying search, the
		// /get endpoint 404s aggressively on metadata mismatches anyway
		lrclibLogger.Debug().Err(err).Msg("direct get failed, falling back to search")
	}

	return l.search(ctx, id)
}

func (l *Lrclib) get(ctx context.Context, id *track.Identity) (*Result, error) {
	query := url.Values{}
	query.Set("artist_name", id.Artist)
	query.Set("track_name", id.Title)
	if id.Album != "" {
		query.Set("album_name", id.Album)
	}
	if id.Duration > 0 {
		query.Set("duration", strconv.Itoa(int(id.Duration+0.5)))
	}

	var record lrclibRecord
	if err := fetchJSON(ctx, "lrclib", l.baseURL+"/get?"+query.Encode(), &record); err != nil {
		return nil, err
	}
	return recordResult(&record)
}

func (l *Lrclib) search(ctx context.Context, id *track.Identity) (*Result, error) {
	query := url.Values{}
	query.Set("artist_name", id.Artist)
	query.Set("track_name", id.Title)

	var records []lrclibRecord
	if err := fetchJSON(ctx, "lrclib", l.baseURL+"/search?"+query.Encode(), &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoMatch
	}

	candidates := make([]track.Identity, len(records))
	for i, r := range records {
		candidates[i] = track.Identity{
			Artist:   r.ArtistName,
			Title:    r.TrackName,
			Album:    r.AlbumName,
			Duration: r.Duration,
		}
	}

	idx, score, ok := match.Best(id, candidates)
	if !ok {
		lrclibLogger.Debug().
			Int("candidates", len(records)).
			Float64("best_score", score).
			Msg("search results rejected by matcher")
		return nil, ErrNoMatch
	}

	lrclibLogger.Debug().
		Str("matched", records[idx].TrackName).
		Float64("score", score).
		Msg("accepted search result")

	return recordResult(&records[idx])
}

func recordResult(record *lrclibRecord) (*Result, error) {
	if record.SyncedLyrics == "" {
		return nil, ErrNoMatch
	}
	return &Result{Format: lyrics.FormatLRC, Raw: record.SyncedLyrics}, nil
}
