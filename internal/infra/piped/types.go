package piped

import "github.com/chorusfm/chorus-backend/internal/domain/track"

// AudioStream is one audio variant of a stream.
type AudioStream struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
	Bitrate  int    `json:"bitrate"`
	Quality  string `json:"quality"`
}

// Item is a search or feed entry. Piped encodes the video identifier
// inside a relative watch URL.
type Item struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	UploaderName string `json:"uploaderName"`
	Thumbnail    string `json:"thumbnail"`
	Duration     int    `json:"duration"`
	Type         string `json:"type"`
}

// Track converts an item into the canonical track record. Items without a
// usable identifier convert to an invalid Track and are filtered upstream.
func (i Item) Track() track.Track {
	artist := i.UploaderName
	if artist == "" {
		artist = track.UnknownArtist
	}
	return track.Track{
		ID:        VideoID(i.URL),
		Title:     i.Title,
		Artist:    artist,
		Thumbnail: i.Thumbnail,
		Duration:  max(i.Duration, 0),
	}
}

// StreamsResponse is the /streams/{id} payload.
type StreamsResponse struct {
	Title        string        `json:"title"`
	Uploader     string        `json:"uploader"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	Duration     int           `json:"duration"`
	AudioStreams []AudioStream `json:"audioStreams"`
	Related      []Item        `json:"relatedStreams"`
}

// PlaylistResponse is the /playlists/{id} payload.
type PlaylistResponse struct {
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Uploader     string `json:"uploader"`
	Related      []Item `json:"relatedStreams"`
}

type searchResponse struct {
	Items []Item `json:"items"`
}
