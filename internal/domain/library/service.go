// Package library manages the user's liked tracks and playlists.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// Persistence keys. Each holds one JSON document rewritten on every
// mutation.
const (
	likesKey     = "library.likes"
	playlistsKey = "library.playlists"
)

// ErrPlaylistNotFound is returned for operations on an unknown playlist ID.
var ErrPlaylistNotFound = errors.New("playlist not found")

// KV is the persistence substrate the library writes through.
type KV interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
}

// Playlist is a named, user-ordered track collection.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Thumbnail string        `json:"thumbnail,omitempty"`
	Tracks    []track.Track `json:"tracks"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Service keeps the library in memory and writes through to the KV on
// every mutation. It is safe for concurrent use.
type Service struct {
	mu        sync.RWMutex
	kv        KV
	likes     []track.Track
	playlists []Playlist

	// newID is swapped in tests for deterministic playlist IDs.
	newID func() string
	now   func() time.Time
}

// NewService loads the persisted library state and returns a ready
// service.
func NewService(kv KV) (*Service, error) {
	s := &Service{
		kv:    kv,
		newID: uuid.NewString,
		now:   time.Now,
	}

	if err := s.load(likesKey, &s.likes); err != nil {
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	if err := s.load(playlistsKey, &s.playlists); err != nil {
		return nil, fmt.Errorf("failed to load playlists: %w", err)
	}
	return s, nil
}

func (s *Service) load(key string, out any) error {
	raw, ok, err := s.kv.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (s *Service) persist(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.kv.Put(key, raw)
}

// IsLiked reports whether the track ID is in the likes list.
func (s *Service) IsLiked(videoID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.likes {
		if t.ID == videoID {
			return true
		}
	}
	return false
}

// ToggleLike adds the track to the likes when absent and removes it when
// present. The track snapshot is stored denormalized so likes render
// without another metadata lookup. Returns the resulting liked state.
func (s *Service) ToggleLike(t track.Track) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, liked := range s.likes {
		if liked.ID == t.ID {
			s.likes = append(s.likes[:i], s.likes[i+1:]...)
			if err := s.persist(likesKey, s.likes); err != nil {
				return true, err
			}
			return false, nil
		}
	}

	s.likes = append(s.likes, t)
	if err := s.persist(likesKey, s.likes); err != nil {
		return false, err
	}
	return true, nil
}

// Likes returns a copy of the liked tracks in like order.
func (s *Service) Likes() []track.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]track.Track, len(s.likes))
	copy(out, s.likes)
	return out
}

// CreatePlaylist creates an empty named playlist.
func (s *Service) CreatePlaylist(name string) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Playlist{
		ID:        s.newID(),
		Name:      name,
		Tracks:    []track.Track{},
		CreatedAt: s.now(),
	}
	s.playlists = append(s.playlists, p)
	if err := s.persist(playlistsKey, s.playlists); err != nil {
		return Playlist{}, err
	}
	return p, nil
}

// DeletePlaylist removes the playlist with the given ID.
func (s *Service) DeletePlaylist(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.playlists {
		if p.ID == id {
			s.playlists = append(s.playlists[:i], s.playlists[i+1:]...)
			return s.persist(playlistsKey, s.playlists)
		}
	}
	return ErrPlaylistNotFound
}

// AddToPlaylist appends the track to the playlist unless it is already
// there. The playlist thumbnail follows its first track.
func (s *Service) AddToPlaylist(id string, t track.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.playlists {
		p := &s.playlists[i]
		if p.ID != id {
			continue
		}
		for _, existing := range p.Tracks {
			if existing.ID == t.ID {
				return nil
			}
		}
		p.Tracks = append(p.Tracks, t)
		if p.Thumbnail == "" {
			p.Thumbnail = t.Thumbnail
		}
		return s.persist(playlistsKey, s.playlists)
	}
	return ErrPlaylistNotFound
}

// RemoveFromPlaylist removes the track ID from the playlist. Removing a
// track that is not there is not an error.
func (s *Service) RemoveFromPlaylist(id, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.playlists {
		p := &s.playlists[i]
		if p.ID != id {
			continue
		}
		for j, t := range p.Tracks {
			if t.ID == videoID {
				p.Tracks = append(p.Tracks[:j], p.Tracks[j+1:]...)
				return s.persist(playlistsKey, s.playlists)
			}
		}
		return nil
	}
	return ErrPlaylistNotFound
}

// Playlists returns a copy of all playlists in creation order.
func (s *Service) Playlists() []Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = p
		out[i].Tracks = append([]track.Track(nil), p.Tracks...)
	}
	return out
}

// Playlist returns one playlist by ID.
func (s *Service) Playlist(id string) (Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.playlists {
		if p.ID == id {
			out := p
			out.Tracks = append([]track.Track(nil), p.Tracks...)
			return out, true
		}
	}
	return Playlist{}, false
}
