// Package track defines the canonical track record shared by the catalog,
// resolver, queue, and library layers.
package track

// Track is a playable media item from an upstream source. The ID is an
// opaque, source-stable identifier. A Track is never mutated after
// construction; enriched copies are built with Merge.
type Track struct {
	ID        string `json:"videoId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"` // seconds, 0 = unknown
	Album     string `json:"album,omitempty"`
}

// Valid reports whether the track carries a usable identifier. Records
// without one are dropped at the adapter boundary.
func (t Track) Valid() bool {
	return t.ID != ""
}

// Merge returns a copy of t with empty or zero fields filled from other.
// Fields already present on t always win; identity never changes.
func (t Track) Merge(other Track) Track {
	out := t
	if out.Title == "" {
		out.Title = other.Title
	}
	if out.Artist == "" || out.Artist == UnknownArtist {
		if other.Artist != "" {
			out.Artist = other.Artist
		}
	}
	if out.Thumbnail == "" {
		out.Thumbnail = other.Thumbnail
	}
	if out.Duration == 0 {
		out.Duration = other.Duration
	}
	if out.Album == "" {
		out.Album = other.Album
	}
	return out
}

// UnknownArtist is substituted when an upstream record has no artist field.
const UnknownArtist = "Unknown"

// Resolution is the outcome of resolving a track identifier to a playable
// audio stream. It is transient and recomputed per play attempt.
type Resolution struct {
	AudioURL  string  `json:"audioUrl"`
	MimeType  string  `json:"mimeType,omitempty"`
	Bitrate   int     `json:"bitrate,omitempty"`
	Quality   string  `json:"quality,omitempty"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist"`
	Thumbnail string  `json:"thumbnail"`
	Duration  int     `json:"duration"`
	Related   []Track `json:"relatedStreams"`
}

// Metadata returns the resolution's enrichment fields as a Track carrying
// the given identifier, suitable for merging into a placeholder record.
func (r *Resolution) Metadata(id string) Track {
	return Track{
		ID:        id,
		Title:     r.Title,
		Artist:    r.Artist,
		Thumbnail: r.Thumbnail,
		Duration:  r.Duration,
	}
}

// Dedupe returns tracks with duplicate identifiers removed, preserving
// first-seen order. Invalid records are dropped.
func Dedupe(tracks []Track) []Track {
	seen := make(map[string]struct{}, len(tracks))
	out := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		if !t.Valid() {
			continue
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
