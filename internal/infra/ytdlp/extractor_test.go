package ytdlp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseExtractOutput(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		wantErr   bool
		wantURL   string
		wantTitle string
		wantDur   int
	}{
		{
			name:      "full metadata line",
			out:       "https://cdn.example/audio.webm|Song Title|Some Artist|https://i.ytimg.com/vi/x/hqdefault.jpg|213\n",
			wantURL:   "https://cdn.example/audio.webm",
			wantTitle: "Song Title",
			wantDur:   213,
		},
		{
			name:      "title containing pipes",
			out:       "https://cdn.example/a|Part 1 | Part 2|Artist|https://thumb|180",
			wantURL:   "https://cdn.example/a",
			wantTitle: "Part 1 | Part 2",
			wantDur:   180,
		},
		{
			name:    "bare URL without metadata",
			out:     "https://cdn.example/audio.m4a\n",
			wantURL: "https://cdn.example/audio.m4a",
		},
		{
			name:      "float duration",
			out:       "https://cdn.example/a|T|A|NA|213.4",
			wantURL:   "https://cdn.example/a",
			wantTitle: "T",
			wantDur:   213,
		},
		{
			name:    "empty output",
			out:     "\n",
			wantErr: true,
		},
		{
			name:    "garbage output",
			out:     "WARNING: something",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseExtractOutput(tt.out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.AudioURL != tt.wantURL {
				t.Errorf("AudioURL = %q, want %q", res.AudioURL, tt.wantURL)
			}
			if res.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", res.Title, tt.wantTitle)
			}
			if res.Duration != tt.wantDur {
				t.Errorf("Duration = %d, want %d", res.Duration, tt.wantDur)
			}
		})
	}
}

func TestParseFlatSearchOutput(t *testing.T) {
	out := strings.Join([]string{
		"abc123|Good Song|Artist A|240",
		"short1|Shorts Clip|Artist B|35",    // sub-60s excluded
		"long1|Two Hour Mix|Artist C|7200",  // over-900s excluded
		"nodur1|No Duration|Artist D|NA",    // unparsable excluded
		"def456|Piped | Title|Artist E|300", // pipe in title
		"",
	}, "\n")

	tracks := parseFlatSearchOutput(out)

	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d: %+v", len(tracks), tracks)
	}
	if tracks[0].ID != "abc123" || tracks[0].Duration != 240 {
		t.Errorf("unexpected first track %+v", tracks[0])
	}
	if tracks[1].ID != "def456" || tracks[1].Title != "Piped | Title" {
		t.Errorf("unexpected second track %+v", tracks[1])
	}
}

func TestExtract_UsesCookieFileWhenPresent(t *testing.T) {
	dir := t.TempDir()
	cookiePath := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(cookiePath, []byte("# Netscape HTTP Cookie File\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var gotArgs []string
	e := NewExtractor(WithCookieFile(cookiePath))
	e.run = func(ctx context.Context, name string, args ...string) (string, error) {
		gotArgs = args
		return "https://cdn.example/audio|T|A|NA|100", nil
	}

	if _, err := e.Extract(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "--cookies "+cookiePath) {
		t.Errorf("expected --cookies flag, args: %v", gotArgs)
	}
	if !strings.Contains(joined, "--no-playlist") {
		t.Errorf("expected --no-playlist flag, args: %v", gotArgs)
	}
	if !strings.Contains(joined, FormatSelector) {
		t.Errorf("expected format selector, args: %v", gotArgs)
	}
	if gotArgs[len(gotArgs)-1] != "https://www.youtube.com/watch?v=abc" {
		t.Errorf("expected watch URL last, args: %v", gotArgs)
	}
}

func TestExtract_OmitsCookieFileWhenMissing(t *testing.T) {
	var gotArgs []string
	e := NewExtractor(WithCookieFile("/nonexistent/cookies.txt"))
	e.run = func(ctx context.Context, name string, args ...string) (string, error) {
		gotArgs = args
		return "https://cdn.example/audio|T|A|NA|100", nil
	}

	if _, err := e.Extract(context.Background(), "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(strings.Join(gotArgs, " "), "--cookies") {
		t.Errorf("cookie flag passed for missing file, args: %v", gotArgs)
	}
}

func TestExtract_CommandFailure(t *testing.T) {
	e := NewExtractor()
	e.run = func(ctx context.Context, name string, args ...string) (string, error) {
		return "", errors.New("exit status 1: ERROR: video unavailable")
	}

	if _, err := e.Extract(context.Background(), "abc"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestFlatSearch_BuildsSearchTarget(t *testing.T) {
	var gotArgs []string
	e := NewExtractor()
	e.run = func(ctx context.Context, name string, args ...string) (string, error) {
		gotArgs = args
		return "abc|Title|Artist|120", nil
	}

	tracks, err := e.FlatSearch(context.Background(), "lofi beats", 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	if gotArgs[len(gotArgs)-1] != "ytsearch25:lofi beats" {
		t.Errorf("unexpected search target, args: %v", gotArgs)
	}
	if !strings.Contains(strings.Join(gotArgs, " "), "--flat-playlist") {
		t.Errorf("expected --flat-playlist, args: %v", gotArgs)
	}
}
