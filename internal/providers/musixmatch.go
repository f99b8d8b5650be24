package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/track"
)

const musixmatchMacroURL = "https://apic-desktop.musixmatch.com/ws/1.1/macro.subtitles.get"

var musixmatchLogger = log.With().Str("component", "musixmatch").Logger()

// Musixmatch fetches word-synchronized (richsync) or line-synchronized
// (subtitle) payloads through the desktop usertoken API. Without a token
// the provider reports ErrNotConfigured and the orchestrator skips it.
type Musixmatch struct {
	token   string
	baseURL string
}

func NewMusixmatch(token, baseURL string) *Musixmatch {
	if baseURL == "" {
		baseURL = musixmatchMacroURL
	}
	return &Musixmatch{token: token, baseURL: baseURL}
}

func (m *Musixmatch) Name() string { return "musixmatch" }

// macroResponse models the slice of the macro.subtitles.get envelope we
// care about. Everything interesting hides three envelopes deep.
type macroResponse struct {
	Message struct {
		Body struct {
			MacroCalls struct {
				MatcherTrackGet macroCall `json:"matcher.track.get"`
				TrackRichsync   macroCall `json:"track.richsync.get"`
				TrackSubtitles  macroCall `json:"track.subtitles.get"`
			} `json:"macro_calls"`
		} `json:"body"`
	} `json:"message"`
}

type macroCall struct {
	Message struct {
		Header struct {
			StatusCode int `json:"status_code"`
		} `json:"header"`
		Body json.RawMessage `json:"body"`
	} `json:"message"`
}

type richsyncBody struct {
	Richsync struct {
		RichsyncBody string `json:"richsync_body"`
	} `json:"richsync"`
}

type subtitleBody struct {
	SubtitleList []struct {
		Subtitle struct {
			SubtitleBody string `json:"subtitle_body"`
		} `json:"subtitle"`
	} `json:"subtitle_list"`
}

func (m *Musixmatch) Lookup(ctx context.Context, id *track.Identity) (*Result, error) {
	if m.token == "" {
		return nil, ErrNotConfigured
	}

	query := url.Values{}
	query.Set("format", "json")
	query.Set("namespace", "lyrics_richsynched")
	query.Set("subtitle_format", "mxm")
	query.Set("app_id", "web-desktop-app-v1.0")
	query.Set("q_artist", id.Artist)
	query.Set("q_track", id.Title)
	query.Set("usertoken", m.token)
	query.Set("optional_calls", "track.richsync")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cookie", "x-mxm-token-guid="+m.token)

	resp, err := sharedHTTPClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("musixmatch returned status %d", resp.StatusCode)
	}

	var envelope macroResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode musixmatch response: %w", err)
	}

	calls := &envelope.Message.Body.MacroCalls
	if calls.MatcherTrackGet.Message.Header.StatusCode != http.StatusOK {
		return nil, ErrNoMatch
	}

	// prefer word-level timing when the service has it
	if calls.TrackRichsync.Message.Header.StatusCode == http.StatusOK {
		var body richsyncBody
		if err := json.Unmarshal(calls.TrackRichsync.Message.Body, &body); err == nil &&
			body.Richsync.RichsyncBody != "" {
			return &Result{Format: lyrics.FormatRichsync, Raw: body.Richsync.RichsyncBody}, nil
		}
	}

	if calls.TrackSubtitles.Message.Header.StatusCode == http.StatusOK {
		var body subtitleBody
		if err := json.Unmarshal(calls.TrackSubtitles.Message.Body, &body); err == nil &&
			len(body.SubtitleList) > 0 && body.SubtitleList[0].Subtitle.SubtitleBody != "" {
			return &Result{Format: lyrics.FormatLineSync, Raw: body.SubtitleList[0].Subtitle.SubtitleBody}, nil
		}
	}

	musixmatchLogger.Debug().
		Str("artist", id.Artist).
		Str("title", id.Title).
		Msg("matcher hit but no richsync or subtitle body")
	return nil, ErrNoMatch
}
