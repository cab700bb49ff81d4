package httpapi

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/catalog"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
	"github.com/chorusfm/chorus-backend/internal/resolver"
)

func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = h.region
	}

	tracks := h.catalog.Trending(r.Context(), region)
	if tracks == nil {
		tracks = []track.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	sections := h.catalog.Browse(r.Context())
	if sections == nil {
		sections = []catalog.Section{}
	}
	writeJSON(w, http.StatusOK, sections)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter required")
		return
	}

	tracks, err := h.catalog.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, catalog.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "catalog not ready")
			return
		}
		log.Warn().Err(err).Str("query", query).Msg("search failed")
		writeJSON(w, http.StatusOK, []track.Track{})
		return
	}
	if tracks == nil {
		tracks = []track.Track{}
	}
	writeJSON(w, http.StatusOK, tracks)
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusOK, []string{})
		return
	}

	suggestions := h.catalog.Suggestions(r.Context(), query)
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	if !h.ready() {
		writeError(w, http.StatusServiceUnavailable, "catalog not ready")
		return
	}
	trackID := r.PathValue("trackId")

	res, err := h.resolver.Resolve(r.Context(), trackID)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "could not get audio stream from any source"
		if !errors.Is(err, resolver.ErrExhausted) {
			log.Error().Err(err).Str("videoId", trackID).Msg("stream resolution failed")
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleStreamPremium(w http.ResponseWriter, r *http.Request) {
	if h.premium == nil {
		writeError(w, http.StatusNotFound, "premium extraction not configured")
		return
	}
	trackID := r.PathValue("trackId")

	res, err := h.premium.Resolve(r.Context(), trackID)
	if err != nil {
		log.Error().Err(err).Str("videoId", trackID).Msg("premium resolution failed")
		writeError(w, http.StatusInternalServerError, "could not get audio stream")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleCatalogPlaylist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("playlistId")

	playlist, err := h.catalog.Playlist(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "catalog not ready")
			return
		}
		log.Warn().Err(err).Str("playlistId", id).Msg("playlist fetch failed")
		writeError(w, http.StatusInternalServerError, "failed to load playlist")
		return
	}
	writeJSON(w, http.StatusOK, playlist)
}
