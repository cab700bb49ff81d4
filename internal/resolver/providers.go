package resolver

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
	"github.com/chorusfm/chorus-backend/internal/infra/piped"
	"github.com/chorusfm/chorus-backend/internal/infra/ytdlp"
)

// errNoAudioStreams means the mirrors answered but offered nothing with an
// audio MIME type.
var errNoAudioStreams = errors.New("no audio streams in response")

// PipedProvider resolves streams through the Piped mirror client. It is the
// primary strategy: cheap HTTP round trips against redundant endpoints.
type PipedProvider struct {
	client *piped.Client
}

// NewPipedProvider creates the mirror-backed provider.
func NewPipedProvider(client *piped.Client) *PipedProvider {
	return &PipedProvider{client: client}
}

// Name implements Provider.
func (p *PipedProvider) Name() string { return "piped" }

// Resolve fetches stream metadata and selects the highest-bitrate variant
// whose MIME type indicates audio.
func (p *PipedProvider) Resolve(ctx context.Context, trackID string) (*track.Resolution, error) {
	data, err := p.client.Streams(ctx, trackID)
	if err != nil {
		return nil, err
	}

	audio := make([]piped.AudioStream, 0, len(data.AudioStreams))
	for _, s := range data.AudioStreams {
		if strings.HasPrefix(s.MimeType, "audio/") {
			audio = append(audio, s)
		}
	}
	if len(audio) == 0 {
		return nil, errNoAudioStreams
	}

	sort.SliceStable(audio, func(i, j int) bool {
		return audio[i].Bitrate > audio[j].Bitrate
	})
	best := audio[0]

	related := make([]track.Track, 0, len(data.Related))
	for _, item := range data.Related {
		if t := item.Track(); t.Valid() {
			related = append(related, t)
		}
	}

	return &track.Resolution{
		AudioURL:  best.URL,
		MimeType:  best.MimeType,
		Bitrate:   best.Bitrate,
		Quality:   best.Quality,
		Title:     data.Title,
		Artist:    data.Uploader,
		Thumbnail: data.ThumbnailURL,
		Duration:  data.Duration,
		Related:   related,
	}, nil
}

// YTDLPProvider is the local-extraction fallback behind the mirrors.
type YTDLPProvider struct {
	extractor *ytdlp.Extractor
}

// NewYTDLPProvider creates the extraction-backed provider.
func NewYTDLPProvider(extractor *ytdlp.Extractor) *YTDLPProvider {
	return &YTDLPProvider{extractor: extractor}
}

// Name implements Provider.
func (p *YTDLPProvider) Name() string { return "yt-dlp" }

// Resolve shells out to yt-dlp, producing the audio URL and metadata in a
// single invocation.
func (p *YTDLPProvider) Resolve(ctx context.Context, trackID string) (*track.Resolution, error) {
	return p.extractor.Extract(ctx, trackID)
}
