// Package catalog normalizes heterogeneous upstream metadata into canonical
// track records for the browse, search, and playlist surfaces.
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// ErrNotReady indicates the primary metadata source has not finished
// initializing. Listing surfaces degrade to safe defaults; only search
// surfaces it to the client.
var ErrNotReady = errors.New("metadata source not ready yet")

// Source is the primary metadata provider.
type Source interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
	Trending(ctx context.Context, region string) ([]track.Track, error)
	Playlist(ctx context.Context, id string) (*Playlist, error)
	Suggestions(ctx context.Context, query string) ([]string, error)
}

// Searcher is the supplementary bulk search used when the primary source
// is down or thin on results.
type Searcher interface {
	FlatSearch(ctx context.Context, query string, limit int) ([]track.Track, error)
}

// Playlist is a named, ordered collection from an upstream source.
type Playlist struct {
	Name      string        `json:"name"`
	Thumbnail string        `json:"thumbnail"`
	Uploader  string        `json:"uploader"`
	Tracks    []track.Track `json:"videos"`
}

// Section is one category of the browse surface.
type Section struct {
	Title  string        `json:"title"`
	Tracks []track.Track `json:"tracks"`
}

// Readiness tracks whether the primary metadata source has completed its
// startup handshake. It is injected rather than kept as package state so
// the not-ready path is reachable in tests.
type Readiness struct {
	mu    sync.RWMutex
	ready bool
}

// NewReadiness returns a Readiness in the not-ready state.
func NewReadiness() *Readiness {
	return &Readiness{}
}

// MarkReady flips the state to ready.
func (r *Readiness) MarkReady() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ready = true
}

// Ready reports whether the source finished initializing.
func (r *Readiness) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}
