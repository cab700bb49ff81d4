package player_test

import (
	"testing"
	"time"

	"github.com/chorusfm/chorus-backend/internal/domain/player"
	"github.com/chorusfm/chorus-backend/internal/domain/queue"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

func TestNewStateDefaults(t *testing.T) {
	state := player.NewState()

	snap := state.Snapshot()
	if snap.Volume != 1.0 {
		t.Errorf("expected volume 1.0, got %v", snap.Volume)
	}
	if snap.Repeat != queue.RepeatOff {
		t.Errorf("expected repeat off, got %q", snap.Repeat)
	}
	if snap.IsPlaying || snap.IsLoading {
		t.Error("expected idle state")
	}
	if snap.CurrentTrack != nil {
		t.Error("expected no current track")
	}
}

func TestStateVolumeClamped(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"in range", 0.5, 0.5},
		{"below zero", -0.2, 0},
		{"above one", 1.7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := player.NewState()
			state.SetVolume(tt.in)
			if got := state.Volume(); got != tt.want {
				t.Errorf("Volume() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateCycleRepeat(t *testing.T) {
	state := player.NewState()

	want := []queue.RepeatMode{queue.RepeatAll, queue.RepeatOne, queue.RepeatOff}
	for _, mode := range want {
		if got := state.CycleRepeat(); got != mode {
			t.Errorf("CycleRepeat() = %q, want %q", got, mode)
		}
	}
}

func TestStateToggles(t *testing.T) {
	state := player.NewState()

	if !state.ToggleShuffle() {
		t.Error("expected shuffle on after first toggle")
	}
	if state.ToggleShuffle() {
		t.Error("expected shuffle off after second toggle")
	}

	if !state.ToggleMute() {
		t.Error("expected muted on after first toggle")
	}
	if state.ToggleMute() {
		t.Error("expected muted off after second toggle")
	}
}

func TestStateSnapshotCopiesTrack(t *testing.T) {
	state := player.NewState()
	state.SetCurrent(&track.Track{ID: "abc", Title: "Song"})

	snap := state.Snapshot()
	if snap.CurrentTrack == nil || snap.CurrentTrack.ID != "abc" {
		t.Fatal("expected snapshot to carry the current track")
	}

	snap.CurrentTrack.Title = "mutated"
	if cur, ok := state.Current(); !ok || cur.Title != "Song" {
		t.Error("snapshot mutation leaked into state")
	}
}

func TestStateSetPlayingClearsLoading(t *testing.T) {
	state := player.NewState()
	state.SetLoading(true)
	state.SetPlaying(true)

	if state.IsLoading() {
		t.Error("expected loading cleared once playing")
	}
	if !state.IsPlaying() {
		t.Error("expected playing")
	}
}

func TestStateProgressIgnoresZeroDuration(t *testing.T) {
	state := player.NewState()
	state.UpdateProgress(10, 200)
	state.UpdateProgress(11, 0)

	snap := state.Snapshot()
	if snap.CurrentTime != 11 {
		t.Errorf("expected currentTime 11, got %v", snap.CurrentTime)
	}
	if snap.Duration != 200 {
		t.Errorf("expected duration 200 retained, got %v", snap.Duration)
	}
}

func TestStateErrorAutoClears(t *testing.T) {
	state := player.NewState()
	state.SetError("stream failed")

	if got := state.LastError(); got != "stream failed" {
		t.Fatalf("LastError() = %q", got)
	}

	deadline := time.Now().Add(player.ErrorDisplayDuration + 2*time.Second)
	for state.LastError() != "" {
		if time.Now().After(deadline) {
			t.Fatal("error did not auto-clear")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestStateNewerErrorSurvivesOldTimer(t *testing.T) {
	state := player.NewState()
	state.SetError("first")
	state.SetError("second")

	if got := state.LastError(); got != "second" {
		t.Errorf("LastError() = %q, want %q", got, "second")
	}
}
