// Package ytdlp shells out to the yt-dlp binary for stream extraction and
// flat search. It is the fallback of last resort behind the HTTP mirrors,
// so its timeout is deliberately generous.
package ytdlp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

const (
	// DefaultBinary is the yt-dlp executable looked up on PATH.
	DefaultBinary = "yt-dlp"

	// DefaultTimeout is the wall-clock budget for one extraction.
	DefaultTimeout = 20 * time.Second

	// FormatSelector prefers opus audio-only, then best audio, then best.
	FormatSelector = "ba[acodec^=opus]/ba/b"

	watchURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// printTemplate emits the playable URL and its metadata in a single
// invocation so extraction never needs a second round trip.
const printTemplate = "%(url)s|%(title)s|%(uploader)s|%(thumbnail)s|%(duration)s"

// flatPrintTemplate is the per-entry line for flat-playlist searches.
const flatPrintTemplate = "%(id)s|%(title)s|%(uploader)s|%(duration)s"

// Extractor runs yt-dlp with bounded wall-clock timeouts.
type Extractor struct {
	binary     string
	cookieFile string
	timeout    time.Duration

	// run is swapped out in tests to avoid depending on the binary.
	run func(ctx context.Context, name string, args ...string) (string, error)
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithBinary sets the yt-dlp executable path.
func WithBinary(path string) ExtractorOption {
	return func(e *Extractor) {
		if path != "" {
			e.binary = path
		}
	}
}

// WithCookieFile sets a Netscape cookie file passed to yt-dlp when it
// exists on disk at invocation time.
func WithCookieFile(path string) ExtractorOption {
	return func(e *Extractor) {
		e.cookieFile = path
	}
}

// WithTimeout overrides the wall-clock timeout.
func WithTimeout(d time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.timeout = d
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		binary:  DefaultBinary,
		timeout: DefaultTimeout,
	}
	e.run = e.runCommand

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *Extractor) runCommand(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}

// extractArgs builds the argument list for a single-track extraction.
func (e *Extractor) extractArgs(id string) []string {
	args := []string{
		"-f", FormatSelector,
		"--no-playlist",
		"--print", printTemplate,
	}
	if e.cookieFile != "" {
		if _, err := os.Stat(e.cookieFile); err == nil {
			args = append(args, "--cookies", e.cookieFile)
		}
	}
	return append(args, fmt.Sprintf(watchURLTemplate, id))
}

// Extract resolves a track identifier to a playable audio URL plus the
// metadata yt-dlp reports for it, in one invocation.
func (e *Extractor) Extract(ctx context.Context, id string) (*track.Resolution, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	out, err := e.run(ctx, e.binary, e.extractArgs(id)...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp extraction for %s: %w", id, err)
	}

	res, err := parseExtractOutput(out)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp extraction for %s: %w", id, err)
	}

	log.Info().
		Str("trackId", id).
		Dur("elapsed", time.Since(start)).
		Msg("yt-dlp extraction succeeded")
	return res, nil
}

// FlatSearch runs a flat-playlist search returning up to limit tracks.
// Results outside the 60s..900s window are dropped (short-form clips and
// long mixes make poor song results).
func (e *Extractor) FlatSearch(ctx context.Context, query string, limit int) ([]track.Track, error) {
	if limit <= 0 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args := []string{
		"--flat-playlist",
		"--print", flatPrintTemplate,
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	}

	out, err := e.run(ctx, e.binary, args...)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp search %q: %w", query, err)
	}

	return parseFlatSearchOutput(out), nil
}
