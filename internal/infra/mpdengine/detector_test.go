package mpdengine

import (
	"testing"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/chorusfm/chorus-backend/internal/playback"
)

func TestCurrentSongPos(t *testing.T) {
	tests := []struct {
		name   string
		status mpd.Attrs
		pos    int
		ok     bool
	}{
		{"playing", mpd.Attrs{"state": "play", "song": "3"}, 3, true},
		{"stopped omits song", mpd.Attrs{"state": "stop"}, 0, false},
		{"garbage song value", mpd.Attrs{"song": "x"}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := currentSongPos(tt.status)
			if pos != tt.pos || ok != tt.ok {
				t.Errorf("currentSongPos() = (%d, %v), want (%d, %v)", pos, ok, tt.pos, tt.ok)
			}
		})
	}
}

func TestStallDetectorEmitsStallAndRecovery(t *testing.T) {
	var d stallDetector

	if _, ok := d.observe("play", 1.0); ok {
		t.Fatal("moving progress must not emit")
	}
	for i := 0; i < stallThreshold-1; i++ {
		if ev, ok := d.observe("play", 1.0); ok {
			t.Fatalf("event %v after only %d frozen polls", ev.Type, i+1)
		}
	}
	ev, ok := d.observe("play", 1.0)
	if !ok || ev.Type != playback.EventStalled {
		t.Fatalf("expected a stall event, got (%v, %v)", ev.Type, ok)
	}
	if _, ok := d.observe("play", 1.0); ok {
		t.Fatal("a stall must only be reported once")
	}

	ev, ok = d.observe("play", 2.5)
	if !ok || ev.Type != playback.EventReady {
		t.Fatalf("expected recovery, got (%v, %v)", ev.Type, ok)
	}
	if _, ok := d.observe("play", 3.5); ok {
		t.Fatal("normal progress after recovery must not emit")
	}
}

func TestStallDetectorResetsOutsidePlay(t *testing.T) {
	var d stallDetector
	d.observe("play", 1.0)
	d.observe("play", 1.0)
	d.observe("pause", 1.0)

	for i := 0; i < stallThreshold-1; i++ {
		if _, ok := d.observe("play", 1.0); ok {
			t.Fatal("pause must reset the frozen-poll count")
		}
	}
}
