package ytdlp

import (
	"errors"
	"strconv"
	"strings"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// Duration window for search results. Anything shorter is a short-form
// clip, anything longer is a live set or mix.
const (
	minSearchDuration = 60
	maxSearchDuration = 900
)

// ErrEmptyOutput is returned when yt-dlp produced no usable line.
var ErrEmptyOutput = errors.New("empty yt-dlp output")

// parseExtractOutput parses the single pipe-delimited line produced by
// printTemplate. Titles may legally contain pipes, so the fixed fields are
// taken from both ends and the remainder re-joined as the title.
func parseExtractOutput(out string) (*track.Resolution, error) {
	line := firstLine(out)
	if line == "" {
		return nil, ErrEmptyOutput
	}

	parts := strings.Split(line, "|")
	if len(parts) < 5 {
		// Bare URL, no metadata. Still usable.
		if strings.HasPrefix(line, "http") {
			return &track.Resolution{AudioURL: line}, nil
		}
		return nil, ErrEmptyOutput
	}

	audioURL := parts[0]
	if audioURL == "" || !strings.HasPrefix(audioURL, "http") {
		return nil, ErrEmptyOutput
	}

	n := len(parts)
	return &track.Resolution{
		AudioURL:  audioURL,
		Title:     cleanField(strings.Join(parts[1:n-3], "|")),
		Artist:    cleanField(parts[n-3]),
		Thumbnail: cleanField(parts[n-2]),
		Duration:  parseDuration(parts[n-1]),
	}, nil
}

// parseFlatSearchOutput parses one flat-playlist entry per line and applies
// the duration window filter. Entries with unparsable durations are
// dropped along with everything outside the window.
func parseFlatSearchOutput(out string) []track.Track {
	var tracks []track.Track
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) < 4 {
			continue
		}

		n := len(parts)
		duration := parseDuration(parts[n-1])
		if duration < minSearchDuration || duration > maxSearchDuration {
			continue
		}

		artist := cleanField(parts[n-2])
		if artist == "" {
			artist = track.UnknownArtist
		}

		t := track.Track{
			ID:       parts[0],
			Title:    cleanField(strings.Join(parts[1:n-2], "|")),
			Artist:   artist,
			Duration: duration,
		}
		if t.Valid() {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// cleanField normalizes yt-dlp's NA placeholder to an empty string.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if s == "NA" {
		return ""
	}
	return s
}

func parseDuration(s string) int {
	s = cleanField(s)
	if s == "" {
		return 0
	}
	// yt-dlp prints durations as integers or floats depending on source.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return int(f)
	}
	return 0
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
