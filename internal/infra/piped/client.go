// Package piped provides an HTTP client over a set of equivalent Piped API
// mirrors, tried in order until one answers.
package piped

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultMirrors are the Piped instances tried in order. All of them serve
// the same API; availability varies day to day, which is the whole reason
// this client exists.
var DefaultMirrors = []string{
	"https://pipedapi.kavin.rocks",
	"https://pipedapi.adminforge.de",
	"https://pipedapi.r4fo.com",
	"https://pipedapi.in.projectsegfau.lt",
	"https://api.piped.yt",
}

const (
	// DefaultRequestTimeout bounds a single mirror attempt.
	DefaultRequestTimeout = 8 * time.Second

	// DefaultUserAgent identifies the backend to upstream instances.
	DefaultUserAgent = "Chorus/0.3 (https://github.com/chorusfm/chorus-backend)"

	// DefaultRateLimit caps outbound requests per second across all mirrors.
	DefaultRateLimit = 4
)

// ErrUnavailable is returned when every configured mirror failed for a
// request. Callers treat it as "this source is down", not as a terminal
// resolution failure.
var ErrUnavailable = errors.New("all piped mirrors failed")

// Client queries Piped mirrors for stream metadata, search, trending, and
// playlist data. A mirror is never retried within a single call.
type Client struct {
	mirrors    []string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// Option is a functional option for configuring the client.
type Option func(*Client)

// WithMirrors replaces the mirror list (useful for testing).
func WithMirrors(mirrors ...string) Option {
	return func(c *Client) {
		c.mirrors = mirrors
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new Piped API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		mirrors:   DefaultMirrors,
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get fetches endpoint from the first mirror that answers with a valid
// body, decoding it into out. Every failure is logged and the next mirror
// is tried; ErrUnavailable is returned once the list is exhausted.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	for _, mirror := range c.mirrors {
		if err := c.getFrom(ctx, mirror, endpoint, out); err != nil {
			log.Debug().
				Str("mirror", mirror).
				Str("endpoint", endpoint).
				Err(err).
				Msg("Piped mirror failed")
			continue
		}
		return nil
	}

	log.Warn().Str("endpoint", endpoint).Msg("All Piped mirrors failed")
	return ErrUnavailable
}

func (c *Client) getFrom(ctx context.Context, mirror, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mirror+endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// Decode into a fresh value: a mirror answering 200 with a half-valid
	// body must not leave stale fields behind for the next attempt, since
	// json.Unmarshal keeps existing values for absent keys.
	fresh := reflect.New(reflect.TypeOf(out).Elem())
	if err := json.Unmarshal(body, fresh.Interface()); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	reflect.ValueOf(out).Elem().Set(fresh.Elem())

	return nil
}

// Streams fetches stream metadata for a video identifier.
func (c *Client) Streams(ctx context.Context, id string) (*StreamsResponse, error) {
	var resp StreamsResponse
	if err := c.get(ctx, "/streams/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Search runs a music-song search across the mirrors.
func (c *Client) Search(ctx context.Context, query string) ([]Item, error) {
	endpoint := "/search?q=" + url.QueryEscape(query) + "&filter=music_songs"
	var resp searchResponse
	if err := c.get(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Trending fetches the trending feed for a region (ISO 3166 code).
func (c *Client) Trending(ctx context.Context, region string) ([]Item, error) {
	if region == "" {
		region = "US"
	}
	var items []Item
	if err := c.get(ctx, "/trending?region="+url.QueryEscape(region), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Playlist fetches a playlist with its tracks.
func (c *Client) Playlist(ctx context.Context, id string) (*PlaylistResponse, error) {
	var resp PlaylistResponse
	if err := c.get(ctx, "/playlists/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Suggestions fetches search completions for a partial query.
func (c *Client) Suggestions(ctx context.Context, query string) ([]string, error) {
	var out []string
	if err := c.get(ctx, "/suggestions?query="+url.QueryEscape(query), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VideoID extracts the identifier from a Piped "/watch?v=..." URL.
func VideoID(watchURL string) string {
	return strings.TrimPrefix(watchURL, "/watch?v=")
}
