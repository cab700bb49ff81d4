package catalog

import (
	"context"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
	"github.com/chorusfm/chorus-backend/internal/infra/piped"
)

// PipedSource adapts the Piped mirror client to the Source contract.
type PipedSource struct {
	client *piped.Client
}

// NewPipedSource wraps a Piped client as the primary metadata source.
func NewPipedSource(client *piped.Client) *PipedSource {
	return &PipedSource{client: client}
}

// Search implements Source.
func (s *PipedSource) Search(ctx context.Context, query string) ([]track.Track, error) {
	items, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return itemTracks(items), nil
}

// Trending implements Source.
func (s *PipedSource) Trending(ctx context.Context, region string) ([]track.Track, error) {
	items, err := s.client.Trending(ctx, region)
	if err != nil {
		return nil, err
	}
	return itemTracks(items), nil
}

// Playlist implements Source.
func (s *PipedSource) Playlist(ctx context.Context, id string) (*Playlist, error) {
	resp, err := s.client.Playlist(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Playlist{
		Name:      resp.Name,
		Thumbnail: resp.ThumbnailURL,
		Uploader:  resp.Uploader,
		Tracks:    itemTracks(resp.Related),
	}, nil
}

// Suggestions implements Source.
func (s *PipedSource) Suggestions(ctx context.Context, query string) ([]string, error) {
	return s.client.Suggestions(ctx, query)
}

func itemTracks(items []piped.Item) []track.Track {
	out := make([]track.Track, 0, len(items))
	for _, item := range items {
		if t := item.Track(); t.Valid() {
			out = append(out, t)
		}
	}
	return out
}
