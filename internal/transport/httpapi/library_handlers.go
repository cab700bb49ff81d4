package httpapi

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/library"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

func (h *Handler) handleLikes(w http.ResponseWriter, _ *http.Request) {
	likes := h.library.Likes()
	if likes == nil {
		likes = []track.Track{}
	}
	writeJSON(w, http.StatusOK, likes)
}

func (h *Handler) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	var t track.Track
	if !decodeBody(w, r, &t) {
		return
	}
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "videoId required")
		return
	}

	liked, err := h.library.ToggleLike(t)
	if err != nil {
		log.Error().Err(err).Str("videoId", t.ID).Msg("toggle like failed")
		writeError(w, http.StatusInternalServerError, "failed to update likes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *Handler) handlePlaylists(w http.ResponseWriter, _ *http.Request) {
	playlists := h.library.Playlists()
	if playlists == nil {
		playlists = []library.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (h *Handler) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name required")
		return
	}

	p, err := h.library.CreatePlaylist(req.Name)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("create playlist failed")
		writeError(w, http.StatusInternalServerError, "failed to create playlist")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	p, ok := h.library.Playlist(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if err := h.library.DeletePlaylist(r.PathValue("id")); err != nil {
		if errors.Is(err, library.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddToPlaylist(w http.ResponseWriter, r *http.Request) {
	var t track.Track
	if !decodeBody(w, r, &t) {
		return
	}
	if !t.Valid() {
		writeError(w, http.StatusBadRequest, "videoId required")
		return
	}

	if err := h.library.AddToPlaylist(r.PathValue("id"), t); err != nil {
		if errors.Is(err, library.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	err := h.library.RemoveFromPlaylist(r.PathValue("id"), r.PathValue("videoId"))
	if err != nil {
		if errors.Is(err, library.ErrPlaylistNotFound) {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update playlist")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
