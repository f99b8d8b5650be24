// Package providers fetches raw synchronized-lyrics payloads from the
// configured external services and picks the right result for the track
// the player reports.
package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"verso.dev/verso/internal/lyrics"
	"verso.dev/verso/internal/track"
)

var (
	// ErrNoMatch means the provider answered but nothing matched the
	// track (404, empty result, or every search candidate scored below
	// the acceptance threshold). Treated as a per-provider miss.
	ErrNoMatch = errors.New("no matching lyrics")

	// ErrNotConfigured means the provider needs a credential or base URL
	// that is absent. Skipped silently by the orchestrator.
	ErrNotConfigured = errors.New("provider not configured")
)

// Result is a raw payload plus the tag needed to parse it later. Parsing
// happens at the orchestrator boundary so the cache can store the payload
// untouched.
type Result struct {
	Format lyrics.Format
	Raw    string
}

// Provider is one lyrics source. Lookup resolves a track identity to a
// raw payload in a single call, internally using direct lookup or
// search-then-fetch depending on the service's API shape.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, id *track.Identity) (*Result, error)
}

// Candidate is a search hit: the identity the provider claims plus an
// opaque reference for fetching its full payload.
type Candidate struct {
	Identity track.Identity
	Ref      string
}

var (
	httpClient     *http.Client
	httpClientOnce sync.Once
)

// sharedHTTPClient returns the process-wide client used by every
// provider. Per-request deadlines come from the caller's context.
func sharedHTTPClient() *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     60 * time.Second,
			TLSHandshakeTimeout: 2 * time.Second,
		}
		httpClient = &http.Client{Transport: transport}
	})
	return httpClient
}

const userAgent = "verso/1.0"

// fetchJSON performs a GET and decodes the body into out. A 404 maps to
// ErrNoMatch so callers can treat it as an ordinary miss.
func fetchJSON(ctx context.Context, service, requestURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := sharedHTTPClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoMatch
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", service, err)
	}
	return nil
}
