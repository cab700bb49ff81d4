package httpapi

import (
	"net/http"
	"strconv"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

func (h *Handler) handlePlayerState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.player.Snapshot())
}

func (h *Handler) handlePlayerQueue(w http.ResponseWriter, _ *http.Request) {
	tracks := h.player.QueueTracks()
	if tracks == nil {
		tracks = []track.Track{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tracks": tracks,
		"index":  h.player.QueueIndex(),
	})
}

func (h *Handler) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue index")
		return
	}
	h.player.RemoveAt(r.Context(), index)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleQueueJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid queue index")
		return
	}
	h.player.JumpTo(r.Context(), index)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Track track.Track   `json:"track"`
		Queue []track.Track `json:"queue"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Track.Valid() {
		writeError(w, http.StatusBadRequest, "track.videoId required")
		return
	}
	h.player.PlayNow(r.Context(), req.Track, req.Queue)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tracks  []track.Track `json:"tracks"`
		PlayNow bool          `json:"playNow"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Tracks) == 0 {
		writeError(w, http.StatusBadRequest, "tracks required")
		return
	}
	h.player.Enqueue(r.Context(), req.Tracks, req.PlayNow)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleNext(w http.ResponseWriter, r *http.Request) {
	h.player.SkipNext(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handlePrev(w http.ResponseWriter, r *http.Request) {
	h.player.SkipPrev(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	h.player.TogglePlay(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position float64 `json:"position"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.player.Seek(req.Position)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	h.player.SetVolume(req.Volume)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMute(w http.ResponseWriter, _ *http.Request) {
	h.player.ToggleMute()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleShuffle(w http.ResponseWriter, _ *http.Request) {
	h.player.ToggleShuffle()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRepeat(w http.ResponseWriter, _ *http.Request) {
	h.player.CycleRepeat()
	w.WriteHeader(http.StatusNoContent)
}
