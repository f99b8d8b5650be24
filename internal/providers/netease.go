package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/match"
	"verso.dev/verso/internal/track"
)

const (
	DefaultNeteaseSearchURL = "https://music.163.com/api/search/get/web"
	DefaultNeteaseLyricURL  = "https://music.163.com/api/song/lyric"
)

var neteaseLogger = log.With().Str("component", "netease").Logger()

type neteaseSearchResponse struct {
	Result struct {
		Songs []struct {
			ID      int    `json:"id"`
			Name    string `json:"name"`
			Artists []struct {
				Name string `json:"name"`
			} `json:"artists"`
			Album struct {
				Name string `json:"name"`
			} `json:"album"`
			Duration int `json:"duration"` // milliseconds
		} `json:"songs"`
	} `json:"result"`
}

type neteaseLyricResponse struct {
	Lrc struct {
		Lyric string `json:"lyric"`
	} `json:"lrc"`
}

// Netease searches the public web API for candidates and fetches the
// line-timestamped lyric body for the best match.
type Netease struct {
	searchURL string
	lyricURL  string
}

func NewNetease(searchURL, lyricURL string) *Netease {
	if searchURL == "" {
		searchURL = DefaultNeteaseSearchURL
	}
	if lyricURL == "" {
		lyricURL = DefaultNeteaseLyricURL
	}
	return &Netease{searchURL: searchURL, lyricURL: lyricURL}
}

func (n *Netease) Name() string { return "netease" }

func (n *Netease) Lookup(ctx context.Context, id *track.Identity) (*Result, error) {
	candidates, err := n.search(ctx, id)
	if err != nil {
		return nil, err
	}

	identities := make([]track.Identity, len(candidates))
	for i := range candidates {
		identities[i] = candidates[i].Identity
	}

	idx, score, ok := match.Best(id, identities)
	if !ok {
		neteaseLogger.Debug().
			Int("candidates", len(candidates)).
			Float64("best_score", score).
			Msg("search results rejected by matcher")
		return nil, ErrNoMatch
	}

	neteaseLogger.Debug().
		Str("matched", candidates[idx].Identity.Title).
		Float64("score", score).
		Msg("accepted search result")

	return n.fetchLyric(ctx, candidates[idx].Ref)
}

func (n *Netease) search(ctx context.Context, id *track.Identity) ([]Candidate, error) {
	terms := strings.TrimSpace(id.Artist + " " + id.Title)
	query := url.Values{}
	query.Set("csrf_token", "hlpretag")
	query.Set("hlposttag", "")
	query.Set("s", terms)
	query.Set("type", "1")
	query.Set("limit", "20")

	var body neteaseSearchResponse
	if err := fetchJSON(ctx, "netease", n.searchURL+"?"+query.Encode(), &body); err != nil {
		return nil, err
	}

	if len(body.Result.Songs) == 0 {
		return nil, ErrNoMatch
	}

	candidates := make([]Candidate, 0, len(body.Result.Songs))
	for _, song := range body.Result.Songs {
		var artists []string
		for _, a := range song.Artists {
			artists = append(artists, a.Name)
		}
		candidates = append(candidates, Candidate{
			Identity: track.Identity{
				Artist:   strings.Join(artists, ", "),
				Title:    song.Name,
				Album:    song.Album.Name,
				Duration: float64(song.Duration) / 1000.0,
			},
			Ref: strconv.Itoa(song.ID),
		})
	}

	neteaseLogger.Debug().
		Int("candidates", len(candidates)).
		Str("query", terms).
		Msg("search returned candidates")
	return candidates, nil
}

func (n *Netease) fetchLyric(ctx context.Context, songID string) (*Result, error) {
	query := url.Values{}
	query.Set("os", "pc")
	query.Set("id", songID)
	query.Set("lv", "-1")
	query.Set("kv", "-1")
	query.Set("tv", "-1")

	var body neteaseLyricResponse
	if err := fetchJSON(ctx, "netease", n.lyricURL+"?"+query.Encode(), &body); err != nil {
		return nil, err
	}

	lyric := strings.TrimSpace(body.Lrc.Lyric)
	if lyric == "" {
		return nil, ErrNoMatch
	}
	if !strings.Contains(lyric, "[") {
		// some tracks only carry unsynced text, useless for highlighting
		return nil, fmt.Errorf("song %s has no timestamped lyrics: %w", songID, ErrNoMatch)
	}

	return &Result{Format: lyrics.FormatLRC, Raw: lyric}, nil
}
