package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chorusfm/chorus-backend/internal/domain/library"
	"github.com/chorusfm/chorus-backend/internal/domain/queue"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
	"github.com/chorusfm/chorus-backend/internal/playback"
	"github.com/chorusfm/chorus-backend/internal/transport/httpapi"
)

// idleEngine accepts every command so the real orchestrator can run behind
// the HTTP surface.
type idleEngine struct{ events chan playback.Event }

func newIdleEngine() *idleEngine {
	return &idleEngine{events: make(chan playback.Event, 8)}
}

func (e *idleEngine) Load(context.Context, string) error { return nil }
func (e *idleEngine) Pause() error                       { return nil }
func (e *idleEngine) Resume() error                      { return nil }
func (e *idleEngine) Seek(float64) error                 { return nil }
func (e *idleEngine) SetVolume(float64) error            { return nil }
func (e *idleEngine) Stop() error                        { return nil }
func (e *idleEngine) Events() <-chan playback.Event      { return e.events }

// slowResolver outlives the HTTP request that triggered it and reports the
// context state it observed when it finished.
type slowResolver struct{ ctxErr chan error }

func (r *slowResolver) Resolve(ctx context.Context, id string) (*track.Resolution, error) {
	select {
	case <-ctx.Done():
	case <-time.After(150 * time.Millisecond):
	}
	r.ctxErr <- ctx.Err()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &track.Resolution{AudioURL: "https://audio.example/" + id, Duration: 180}, nil
}

func TestPlayIntentSurvivesRequestLifetime(t *testing.T) {
	r := &slowResolver{ctxErr: make(chan error, 1)}
	orch := playback.New(queue.New(), r, newIdleEngine())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go orch.Run(ctx)

	lib, err := library.NewService(&memKV{data: map[string][]byte{}})
	if err != nil {
		t.Fatalf("library setup failed: %v", err)
	}
	h := httpapi.New(&fakeCatalog{}, &fakeStreamResolver{}, nil, lib, orch, "US")
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	resp := post(t, srv.URL+"/api/player/play", `{"track":{"videoId":"abc","title":"Song","artist":"Band"}}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("play status = %d", resp.StatusCode)
	}

	// The request is long finished; the resolution it kicked off must not
	// have been cancelled with it.
	select {
	case err := <-r.ctxErr:
		if err != nil {
			t.Fatalf("resolution context = %v, want nil after the request returned", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("resolver never finished")
	}

	deadline := time.Now().Add(2 * time.Second)
	for !orch.State().IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatal("expected playback to start")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap := orch.Snapshot(); snap.Error != "" {
		t.Fatalf("unexpected error state %q", snap.Error)
	}
}
