// Package resolver turns a track identifier into a playable audio stream by
// walking an ordered list of resolution strategies until one succeeds.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// ErrExhausted is returned when every configured provider failed. It is the
// only terminal failure the resolution path surfaces.
var ErrExhausted = errors.New("could not get audio stream from any source")

// maxRelated caps the related tracks attached to a resolution.
const maxRelated = 10

// Provider is one resolution strategy. Implementations apply their own
// timeouts; a provider is attempted fully before the next one is tried and
// is never retried within the same resolution call.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, trackID string) (*track.Resolution, error)
}

// Searcher supplies related tracks by free-text search. Lookups are
// best-effort: an error degrades to an empty related list.
type Searcher interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
}

// Resolver chains providers in order and enriches successful resolutions
// with related tracks and upgraded thumbnails.
type Resolver struct {
	providers []Provider
	searcher  Searcher
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSearcher enables best-effort related-track lookup on resolutions
// that come back without any.
func WithSearcher(s Searcher) Option {
	return func(r *Resolver) {
		r.searcher = s
	}
}

// New creates a Resolver over the given providers, attempted in order.
func New(providers []Provider, opts ...Option) *Resolver {
	r := &Resolver{providers: providers}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve attempts every provider in order and returns the first usable
// resolution. A resolution is usable only with a non-empty audio URL; a
// provider returning an empty one counts as failed. ErrExhausted is
// returned once the provider list runs out.
func (r *Resolver) Resolve(ctx context.Context, trackID string) (*track.Resolution, error) {
	if trackID == "" {
		return nil, fmt.Errorf("%w: empty track id", ErrExhausted)
	}

	for _, p := range r.providers {
		start := time.Now()
		res, err := p.Resolve(ctx, trackID)
		if err != nil {
			log.Warn().
				Str("provider", p.Name()).
				Str("trackId", trackID).
				Err(err).
				Msg("Stream provider failed")
			continue
		}
		if res == nil || res.AudioURL == "" {
			log.Warn().
				Str("provider", p.Name()).
				Str("trackId", trackID).
				Msg("Stream provider returned no audio URL")
			continue
		}

		log.Info().
			Str("provider", p.Name()).
			Str("trackId", trackID).
			Int("bitrate", res.Bitrate).
			Dur("elapsed", time.Since(start)).
			Msg("Stream resolved")

		r.enrich(ctx, trackID, res)
		return res, nil
	}

	return nil, ErrExhausted
}

// enrich upgrades thumbnails and fills in related tracks. It never fails
// the resolution.
func (r *Resolver) enrich(ctx context.Context, trackID string, res *track.Resolution) {
	res.Thumbnail = track.UpgradeThumbnail(res.Thumbnail)
	for i := range res.Related {
		res.Related[i].Thumbnail = track.UpgradeThumbnail(res.Related[i].Thumbnail)
	}

	if len(res.Related) > maxRelated {
		res.Related = res.Related[:maxRelated]
	}

	if len(res.Related) > 0 || r.searcher == nil {
		return
	}
	if res.Artist == "" && res.Title == "" {
		return
	}

	related, err := r.searcher.Search(ctx, res.Artist+" "+res.Title)
	if err != nil {
		log.Debug().
			Str("trackId", trackID).
			Err(err).
			Msg("Related track lookup failed")
		return
	}

	// The resolved track itself is not "related".
	out := make([]track.Track, 0, maxRelated)
	for _, t := range related {
		if t.ID == trackID {
			continue
		}
		out = append(out, t)
		if len(out) == maxRelated {
			break
		}
	}
	res.Related = out
}
