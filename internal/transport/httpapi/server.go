// Package httpapi exposes the REST surface: catalog browsing, stream
// resolution, the library and playback control.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/catalog"
	"github.com/chorusfm/chorus-backend/internal/domain/library"
	"github.com/chorusfm/chorus-backend/internal/domain/player"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// Catalog is the metadata surface the API serves.
type Catalog interface {
	Search(ctx context.Context, query string) ([]track.Track, error)
	Trending(ctx context.Context, region string) []track.Track
	Browse(ctx context.Context) []catalog.Section
	Playlist(ctx context.Context, id string) (*catalog.Playlist, error)
	Suggestions(ctx context.Context, query string) []string
}

// StreamResolver turns a track ID into a playable stream.
type StreamResolver interface {
	Resolve(ctx context.Context, trackID string) (*track.Resolution, error)
}

// Library is the likes and playlists store.
type Library interface {
	IsLiked(videoID string) bool
	ToggleLike(t track.Track) (bool, error)
	Likes() []track.Track
	CreatePlaylist(name string) (library.Playlist, error)
	DeletePlaylist(id string) error
	AddToPlaylist(id string, t track.Track) error
	RemoveFromPlaylist(id, videoID string) error
	Playlists() []library.Playlist
	Playlist(id string) (library.Playlist, bool)
}

// Player is the playback control surface.
type Player interface {
	PlayNow(ctx context.Context, t track.Track, tail []track.Track)
	Enqueue(ctx context.Context, tracks []track.Track, playNow bool)
	JumpTo(ctx context.Context, index int)
	RemoveAt(ctx context.Context, index int)
	SkipNext(ctx context.Context)
	SkipPrev(ctx context.Context)
	TogglePlay(ctx context.Context)
	Seek(seconds float64)
	SetVolume(v float64)
	ToggleMute()
	ToggleShuffle()
	CycleRepeat()
	Snapshot() player.Snapshot
	QueueTracks() []track.Track
	QueueIndex() int
}

// Handler serves the REST API.
type Handler struct {
	catalog  Catalog
	resolver StreamResolver
	premium  StreamResolver
	library  Library
	player   Player
	region   string
	ready    func() bool
}

// Option configures the handler.
type Option func(*Handler)

// WithReadiness gates stream resolution on the given check; requests
// arriving before it reports true are answered 503.
func WithReadiness(ready func() bool) Option {
	return func(h *Handler) { h.ready = ready }
}

// New creates a handler. premium may be nil, in which case the premium
// stream endpoint answers 404.
func New(c Catalog, r StreamResolver, premium StreamResolver, lib Library, p Player, region string, opts ...Option) *Handler {
	h := &Handler{
		catalog:  c,
		resolver: r,
		premium:  premium,
		library:  lib,
		player:   p,
		region:   region,
		ready:    func() bool { return true },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers all API routes on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/trending", h.handleTrending)
	mux.HandleFunc("GET /api/browse", h.handleBrowse)
	mux.HandleFunc("GET /api/search", h.handleSearch)
	mux.HandleFunc("GET /api/suggestions", h.handleSuggestions)
	mux.HandleFunc("GET /api/stream/{trackId}", h.handleStream)
	mux.HandleFunc("GET /api/stream-premium/{trackId}", h.handleStreamPremium)
	mux.HandleFunc("GET /api/playlist/{playlistId}", h.handleCatalogPlaylist)

	mux.HandleFunc("GET /api/likes", h.handleLikes)
	mux.HandleFunc("POST /api/likes", h.handleToggleLike)
	mux.HandleFunc("GET /api/playlists", h.handlePlaylists)
	mux.HandleFunc("POST /api/playlists", h.handleCreatePlaylist)
	mux.HandleFunc("GET /api/playlists/{id}", h.handlePlaylist)
	mux.HandleFunc("DELETE /api/playlists/{id}", h.handleDeletePlaylist)
	mux.HandleFunc("POST /api/playlists/{id}/tracks", h.handleAddToPlaylist)
	mux.HandleFunc("DELETE /api/playlists/{id}/tracks/{videoId}", h.handleRemoveFromPlaylist)

	mux.HandleFunc("GET /api/player/state", h.handlePlayerState)
	mux.HandleFunc("GET /api/player/queue", h.handlePlayerQueue)
	mux.HandleFunc("DELETE /api/player/queue/{index}", h.handleQueueRemove)
	mux.HandleFunc("POST /api/player/queue/{index}/play", h.handleQueueJump)
	mux.HandleFunc("POST /api/player/play", h.handlePlay)
	mux.HandleFunc("POST /api/player/enqueue", h.handleEnqueue)
	mux.HandleFunc("POST /api/player/next", h.handleNext)
	mux.HandleFunc("POST /api/player/prev", h.handlePrev)
	mux.HandleFunc("POST /api/player/toggle", h.handleToggle)
	mux.HandleFunc("POST /api/player/seek", h.handleSeek)
	mux.HandleFunc("POST /api/player/volume", h.handleVolume)
	mux.HandleFunc("POST /api/player/mute", h.handleMute)
	mux.HandleFunc("POST /api/player/shuffle", h.handleShuffle)
	mux.HandleFunc("POST /api/player/repeat", h.handleRepeat)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encoding failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
