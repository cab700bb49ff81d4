package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

const (
	// minTrendingResults triggers supplementary broad queries when the
	// primary feed comes back thinner than this.
	minTrendingResults = 15

	// maxTrendingResults caps the trending surface.
	maxTrendingResults = 30

	// flatSearchLimit bounds supplementary search batches.
	flatSearchLimit = 20
)

// broadQueries pad out a thin trending feed. Failure of any single query
// degrades to an empty batch.
var broadQueries = []string{
	"trending songs 2025",
	"new hindi songs 2025",
	"top bollywood songs",
	"latest punjabi songs",
	"popular english songs",
}

// browseCategories define the browse surface. Each category is fetched
// independently; one failing leaves the others intact.
var browseCategories = []struct {
	title string
	query string
}{
	{"Pop Hits", "top pop songs"},
	{"Rock Classics", "classic rock hits"},
	{"Chill", "lofi chill beats"},
	{"Workout", "workout songs playlist"},
	{"Bollywood", "top bollywood songs"},
}

// Service is the metadata provider adapter. It holds no state between
// calls beyond its injected collaborators.
type Service struct {
	source    Source
	searcher  Searcher
	readiness *Readiness
	region    string
}

// NewService creates a catalog service. searcher may be nil, disabling the
// supplementary flat-search fallback.
func NewService(source Source, searcher Searcher, readiness *Readiness, region string) *Service {
	if region == "" {
		region = "US"
	}
	return &Service{
		source:    source,
		searcher:  searcher,
		readiness: readiness,
		region:    region,
	}
}

// Search returns canonical tracks for a query. The primary source is tried
// first; on failure the supplementary searcher fills in. Both failing
// yields an empty list, never an error — except ErrNotReady, which the
// search surface reports to the client.
func (s *Service) Search(ctx context.Context, query string) ([]track.Track, error) {
	if !s.readiness.Ready() {
		return nil, ErrNotReady
	}

	results, err := s.source.Search(ctx, query)
	if err == nil && len(results) > 0 {
		return track.Dedupe(results), nil
	}
	if err != nil {
		log.Warn().Str("query", query).Err(err).Msg("Primary search failed")
	}

	if s.searcher != nil {
		supplement, serr := s.searcher.FlatSearch(ctx, query, flatSearchLimit)
		if serr != nil {
			log.Warn().Str("query", query).Err(serr).Msg("Supplementary search failed")
		} else if len(supplement) > 0 {
			return track.Dedupe(supplement), nil
		}
	}

	return []track.Track{}, nil
}

// Trending returns the trending feed for a region, padded with broad
// queries when thin and falling back to the built-in set when everything
// upstream is down. It never returns an error.
func (s *Service) Trending(ctx context.Context, region string) []track.Track {
	if region == "" {
		region = s.region
	}

	var results []track.Track
	if s.readiness.Ready() {
		feed, err := s.source.Trending(ctx, region)
		if err != nil {
			log.Warn().Str("region", region).Err(err).Msg("Trending feed failed")
		} else {
			results = feed
		}
	}

	if len(results) < minTrendingResults {
		results = append(results, s.broadSearch(ctx)...)
	}

	results = track.Dedupe(results)
	if len(results) == 0 {
		log.Warn().Msg("All trending sources failed, serving fallback set")
		return FallbackTracks()
	}

	if len(results) > maxTrendingResults {
		results = results[:maxTrendingResults]
	}
	return results
}

// broadSearch runs the supplementary queries concurrently. Each query is
// failure-isolated: an error contributes an empty batch. Merge order
// follows the fixed query order regardless of completion order.
func (s *Service) broadSearch(ctx context.Context) []track.Track {
	batches := make([][]track.Track, len(broadQueries))

	var wg sync.WaitGroup
	for i, q := range broadQueries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			batch, err := s.searchAny(ctx, q)
			if err != nil {
				log.Debug().Str("query", q).Err(err).Msg("Broad query failed")
				return
			}
			batches[i] = batch
		}(i, q)
	}
	wg.Wait()

	var merged []track.Track
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return merged
}

// searchAny queries the primary source when ready, otherwise the
// supplementary searcher.
func (s *Service) searchAny(ctx context.Context, query string) ([]track.Track, error) {
	if s.readiness.Ready() {
		if results, err := s.source.Search(ctx, query); err == nil {
			return results, nil
		}
	}
	if s.searcher == nil {
		return nil, ErrNotReady
	}
	return s.searcher.FlatSearch(ctx, query, flatSearchLimit)
}

// Browse assembles the category sections concurrently. A failed category
// degrades to an empty section rather than aborting the batch.
func (s *Service) Browse(ctx context.Context) []Section {
	sections := make([]Section, len(browseCategories))

	var wg sync.WaitGroup
	for i, cat := range browseCategories {
		sections[i] = Section{Title: cat.title, Tracks: []track.Track{}}
		wg.Add(1)
		go func(i int, query string) {
			defer wg.Done()
			tracks, err := s.searchAny(ctx, query)
			if err != nil {
				log.Debug().Str("category", browseCategories[i].title).Err(err).Msg("Browse category failed")
				return
			}
			sections[i].Tracks = track.Dedupe(tracks)
		}(i, cat.query)
	}
	wg.Wait()

	return sections
}

// Playlist fetches an upstream playlist. Tracks lacking identifiers are
// filtered out; thumbnails are upgraded.
func (s *Service) Playlist(ctx context.Context, id string) (*Playlist, error) {
	if !s.readiness.Ready() {
		return nil, ErrNotReady
	}

	pl, err := s.source.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}

	pl.Thumbnail = track.UpgradeThumbnail(pl.Thumbnail)
	pl.Tracks = track.Dedupe(pl.Tracks)
	for i := range pl.Tracks {
		pl.Tracks[i].Thumbnail = track.UpgradeThumbnail(pl.Tracks[i].Thumbnail)
	}
	return pl, nil
}

// Suggestions returns search completions. Failures degrade to an empty
// list.
func (s *Service) Suggestions(ctx context.Context, query string) []string {
	if query == "" || !s.readiness.Ready() {
		return []string{}
	}

	out, err := s.source.Suggestions(ctx, query)
	if err != nil {
		log.Debug().Str("query", query).Err(err).Msg("Suggestions failed")
		return []string{}
	}
	return out
}

// ProbeSource marks the catalog ready once the source answers a trivial
// request, retrying until it does or ctx is cancelled. Intended to run in
// a background goroutine at startup.
func (s *Service) ProbeSource(ctx context.Context, retryInterval time.Duration) {
	for {
		if _, err := s.source.Suggestions(ctx, "a"); err == nil {
			s.readiness.MarkReady()
			log.Info().Msg("Metadata source ready")
			return
		} else {
			log.Warn().Err(err).Dur("retryIn", retryInterval).Msg("Metadata source probe failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryInterval):
		}
	}
}
