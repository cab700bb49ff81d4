package mpdengine_test

import (
	"context"
	"testing"

	"github.com/chorusfm/chorus-backend/internal/infra/mpdengine"
)

// Port 16600 is assumed dead; the tests exercise the disconnected paths.

func TestNewEngine(t *testing.T) {
	engine := mpdengine.New("localhost", 16600, "")

	if engine == nil {
		t.Fatal("New should return a non-nil engine")
	}
	if engine.Events() == nil {
		t.Error("Events should return a channel before Watch runs")
	}
}

func TestConnectFailure(t *testing.T) {
	engine := mpdengine.New("localhost", 16600, "")

	if err := engine.Connect(); err == nil {
		t.Error("Connect should fail for non-existent server")
		engine.Close()
	}
}

func TestPingWithoutConnect(t *testing.T) {
	engine := mpdengine.New("localhost", 16600, "")

	if err := engine.Ping(); err == nil {
		t.Error("Ping should fail when not connected")
	}
}

func TestCommandsWithoutServer(t *testing.T) {
	engine := mpdengine.New("localhost", 16600, "")

	if err := engine.Load(context.Background(), "https://example.com/a.opus"); err == nil {
		t.Error("Load should fail when MPD is unreachable")
	}
	if err := engine.Pause(); err == nil {
		t.Error("Pause should fail when MPD is unreachable")
	}
	if err := engine.Resume(); err == nil {
		t.Error("Resume should fail when MPD is unreachable")
	}
	if err := engine.Seek(10); err == nil {
		t.Error("Seek should fail when MPD is unreachable")
	}
	if err := engine.SetVolume(0.5); err == nil {
		t.Error("SetVolume should fail when MPD is unreachable")
	}
	if err := engine.Stop(); err == nil {
		t.Error("Stop should fail when MPD is unreachable")
	}
}

func TestCloseWithoutConnect(t *testing.T) {
	engine := mpdengine.New("localhost", 16600, "")

	if err := engine.Close(); err != nil {
		t.Errorf("Close on a never-connected engine should be a no-op, got %v", err)
	}
}
