package library_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/chorusfm/chorus-backend/internal/domain/library"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// memKV is an in-memory library.KV.
type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func newTestService(t *testing.T) (*library.Service, *memKV) {
	t.Helper()
	kv := newMemKV()
	svc, err := library.NewService(kv)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc, kv
}

func TestToggleLikeFlips(t *testing.T) {
	svc, _ := newTestService(t)
	tr := track.Track{ID: "abc", Title: "Song", Artist: "Band"}

	liked, err := svc.ToggleLike(tr)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if !liked || !svc.IsLiked("abc") {
		t.Error("expected track liked after first toggle")
	}

	liked, err = svc.ToggleLike(tr)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked || svc.IsLiked("abc") {
		t.Error("expected track unliked after second toggle")
	}
	if len(svc.Likes()) != 0 {
		t.Error("expected empty likes list")
	}
}

func TestLikesPersistAcrossReload(t *testing.T) {
	svc, kv := newTestService(t)
	if _, err := svc.ToggleLike(track.Track{ID: "abc", Title: "Song", Artist: "Band"}); err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}

	reloaded, err := library.NewService(kv)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if !reloaded.IsLiked("abc") {
		t.Error("expected like to survive reload")
	}
}

func TestCreateAndDeletePlaylist(t *testing.T) {
	svc, _ := newTestService(t)

	p, err := svc.CreatePlaylist("Road Trip")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	if p.ID == "" || p.Name != "Road Trip" {
		t.Errorf("unexpected playlist: %+v", p)
	}
	if len(svc.Playlists()) != 1 {
		t.Fatal("expected one playlist")
	}

	if err := svc.DeletePlaylist(p.ID); err != nil {
		t.Fatalf("DeletePlaylist failed: %v", err)
	}
	if len(svc.Playlists()) != 0 {
		t.Error("expected no playlists after delete")
	}

	if err := svc.DeletePlaylist(p.ID); !errors.Is(err, library.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestAddToPlaylistDeduplicates(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.CreatePlaylist("Favorites")
	tr := track.Track{ID: "abc", Title: "Song", Artist: "Band", Thumbnail: "https://img.example/abc.jpg"}

	if err := svc.AddToPlaylist(p.ID, tr); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}
	if err := svc.AddToPlaylist(p.ID, tr); err != nil {
		t.Fatalf("duplicate AddToPlaylist failed: %v", err)
	}

	got, ok := svc.Playlist(p.ID)
	if !ok {
		t.Fatal("playlist missing")
	}
	if len(got.Tracks) != 1 {
		t.Errorf("expected 1 track, got %d", len(got.Tracks))
	}
	if got.Thumbnail != tr.Thumbnail {
		t.Errorf("expected playlist thumbnail from first track, got %q", got.Thumbnail)
	}
}

func TestAddToUnknownPlaylist(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AddToPlaylist("nope", track.Track{ID: "abc", Title: "Song", Artist: "Band"})
	if !errors.Is(err, library.ErrPlaylistNotFound) {
		t.Errorf("expected ErrPlaylistNotFound, got %v", err)
	}
}

func TestRemoveFromPlaylist(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.CreatePlaylist("Mix")
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("t%d", i)
		if err := svc.AddToPlaylist(p.ID, track.Track{ID: id, Title: id, Artist: "X"}); err != nil {
			t.Fatalf("AddToPlaylist failed: %v", err)
		}
	}

	if err := svc.RemoveFromPlaylist(p.ID, "t1"); err != nil {
		t.Fatalf("RemoveFromPlaylist failed: %v", err)
	}

	got, _ := svc.Playlist(p.ID)
	if len(got.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(got.Tracks))
	}
	if got.Tracks[0].ID != "t0" || got.Tracks[1].ID != "t2" {
		t.Errorf("unexpected order: %v, %v", got.Tracks[0].ID, got.Tracks[1].ID)
	}

	// Removing an absent track is a no-op.
	if err := svc.RemoveFromPlaylist(p.ID, "t1"); err != nil {
		t.Errorf("second remove failed: %v", err)
	}
}

func TestPlaylistsPersistAcrossReload(t *testing.T) {
	svc, kv := newTestService(t)
	p, _ := svc.CreatePlaylist("Keep")
	if err := svc.AddToPlaylist(p.ID, track.Track{ID: "abc", Title: "Song", Artist: "Band"}); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}

	reloaded, err := library.NewService(kv)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	got, ok := reloaded.Playlist(p.ID)
	if !ok {
		t.Fatal("expected playlist to survive reload")
	}
	if len(got.Tracks) != 1 || got.Tracks[0].ID != "abc" {
		t.Errorf("unexpected tracks after reload: %+v", got.Tracks)
	}
}

func TestPlaylistsReturnsCopies(t *testing.T) {
	svc, _ := newTestService(t)
	p, _ := svc.CreatePlaylist("Mut")
	if err := svc.AddToPlaylist(p.ID, track.Track{ID: "abc", Title: "Song", Artist: "Band"}); err != nil {
		t.Fatalf("AddToPlaylist failed: %v", err)
	}

	out := svc.Playlists()
	out[0].Tracks[0].Title = "mutated"

	got, _ := svc.Playlist(p.ID)
	if got.Tracks[0].Title != "Song" {
		t.Error("mutation of returned slice leaked into service")
	}
}
