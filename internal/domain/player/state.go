// Package player holds the playback state owned by the orchestrator.
package player

import (
	"sync"
	"time"

	"github.com/chorusfm/chorus-backend/internal/domain/queue"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// ErrorDisplayDuration is how long a transient error message stays set
// before auto-clearing.
const ErrorDisplayDuration = 4 * time.Second

// State is the single source of truth for playback. It is mutated only by
// the orchestrator, in response to engine events or transport intents; the
// UI reads snapshots.
// It is safe for concurrent access.
type State struct {
	mu sync.RWMutex

	current   *track.Track
	isPlaying bool
	isLoading bool

	currentTime float64
	duration    float64

	volume float64 // 0..1
	muted  bool

	shuffle bool
	repeat  queue.RepeatMode

	lastError string
	errorGen  uint64
}

// NewState creates a state with default values.
func NewState() *State {
	return &State{
		volume: 1.0,
		repeat: queue.RepeatOff,
	}
}

// Snapshot is an immutable copy of the state for serialization.
type Snapshot struct {
	CurrentTrack *track.Track     `json:"currentTrack"`
	IsPlaying    bool             `json:"isPlaying"`
	IsLoading    bool             `json:"isLoading"`
	CurrentTime  float64          `json:"currentTime"`
	Duration     float64          `json:"duration"`
	Volume       float64          `json:"volume"`
	Muted        bool             `json:"muted"`
	Shuffle      bool             `json:"shuffle"`
	Repeat       queue.RepeatMode `json:"repeat"`
	Error        string           `json:"error,omitempty"`
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		IsPlaying:   s.isPlaying,
		IsLoading:   s.isLoading,
		CurrentTime: s.currentTime,
		Duration:    s.duration,
		Volume:      s.volume,
		Muted:       s.muted,
		Shuffle:     s.shuffle,
		Repeat:      s.repeat,
		Error:       s.lastError,
	}
	if s.current != nil {
		t := *s.current
		snap.CurrentTrack = &t
	}
	return snap
}

// SetCurrent replaces the current track reference.
func (s *State) SetCurrent(t *track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		s.current = nil
		return
	}
	c := *t
	s.current = &c
}

// Current returns the current track, if any.
func (s *State) Current() (track.Track, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return track.Track{}, false
	}
	return *s.current, true
}

// SetLoading marks a resolution in flight.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isLoading = loading
}

// SetPlaying flips the playing flag and clears loading.
func (s *State) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isPlaying = playing
	s.isLoading = false
}

// IsPlaying reports whether playback is active.
func (s *State) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// IsLoading reports whether a resolution is in flight.
func (s *State) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// UpdateProgress records the engine-reported position and duration.
func (s *State) UpdateProgress(currentTime, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentTime = currentTime
	if duration > 0 {
		s.duration = duration
	}
}

// CurrentTime returns the last engine-reported position in seconds.
func (s *State) CurrentTime() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentTime
}

// SetVolume clamps and stores the volume.
func (s *State) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	s.volume = v
}

// Volume returns the stored volume.
func (s *State) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// ToggleMute flips the mute flag and returns the new value.
func (s *State) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

// Muted reports the mute flag.
func (s *State) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// ToggleShuffle flips shuffle and returns the new value.
func (s *State) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = !s.shuffle
	return s.shuffle
}

// Shuffle reports the shuffle flag.
func (s *State) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuffle
}

// CycleRepeat advances the repeat mode and returns the new one.
func (s *State) CycleRepeat() queue.RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = s.repeat.Next()
	return s.repeat
}

// Repeat returns the repeat mode.
func (s *State) Repeat() queue.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repeat
}

// SetError records a transient user-visible error that auto-clears after
// ErrorDisplayDuration unless replaced by a newer one first.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.errorGen++
	gen := s.errorGen
	s.mu.Unlock()

	time.AfterFunc(ErrorDisplayDuration, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.errorGen == gen {
			s.lastError = ""
		}
	})
}

// LastError returns the transient error message, if any.
func (s *State) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}
