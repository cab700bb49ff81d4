// Package mpdengine drives MPD as the audio output. Resolved stream URLs
// are loaded straight into the MPD queue; MPD idle events and elapsed
// polling are translated into the engine events the orchestrator consumes.
package mpdengine

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fhs/gompd/v2/mpd"
	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/playback"
)

// progressInterval is how often elapsed time is polled while playing.
const progressInterval = time.Second

// stallThreshold is how many consecutive progress polls without elapsed
// movement count as rebuffering.
const stallThreshold = 3

// Engine wraps the gompd client with reconnection logic.
type Engine struct {
	mu       sync.RWMutex
	client   *mpd.Client
	watcher  *mpd.Watcher
	host     string
	port     int
	password string

	events chan playback.Event

	// expectStop distinguishes a commanded stop from a natural track end.
	expectStop bool
	lastState  string

	// stall is only touched from the watch goroutine.
	stall stallDetector
}

// stallDetector watches polled elapsed time and reports transitions in
// and out of a rebuffering stall. MPD keeps state=play while its input
// buffer drains, so frozen elapsed time is the only stall signal it gives.
type stallDetector struct {
	lastElapsed float64
	ticks       int
	stalled     bool
}

// observe feeds one status poll and returns an event to emit, if any:
// EventStalled when progress froze long enough, EventReady when it moves
// again afterwards.
func (d *stallDetector) observe(state string, elapsed float64) (playback.Event, bool) {
	if state != "play" {
		d.lastElapsed = elapsed
		d.ticks = 0
		d.stalled = false
		return playback.Event{}, false
	}

	if elapsed == d.lastElapsed {
		d.ticks++
		if d.ticks >= stallThreshold && !d.stalled {
			d.stalled = true
			return playback.Event{Type: playback.EventStalled}, true
		}
		return playback.Event{}, false
	}

	d.lastElapsed = elapsed
	d.ticks = 0
	if d.stalled {
		d.stalled = false
		return playback.Event{Type: playback.EventReady}, true
	}
	return playback.Event{}, false
}

// New creates an engine for the MPD instance at host:port.
func New(host string, port int, password string) *Engine {
	return &Engine{
		host:     host,
		port:     port,
		password: password,
		events:   make(chan playback.Event, 32),
	}
}

// Connect establishes the command connection to MPD.
func (e *Engine) Connect() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connectLocked()
}

func (e *Engine) connectLocked() error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	log.Info().Str("addr", addr).Msg("Connecting to MPD")

	client, err := mpd.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to MPD: %w", err)
	}

	if e.password != "" {
		if err := client.Command("password %s", e.password).OK(); err != nil {
			client.Close()
			return fmt.Errorf("MPD authentication failed: %w", err)
		}
	}

	e.client = client
	log.Info().Msg("Connected to MPD")
	return nil
}

// ensureConnected checks the connection and reconnects if needed.
func (e *Engine) ensureConnected() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.client == nil {
		return e.connectLocked()
	}

	if err := e.client.Ping(); err != nil {
		log.Warn().Err(err).Msg("MPD connection lost, reconnecting...")
		e.client.Close()
		e.client = nil
		return e.connectLocked()
	}

	return nil
}

// Close shuts down the watcher and the command connection.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.watcher != nil {
		e.watcher.Close()
		e.watcher = nil
	}

	if e.client != nil {
		err := e.client.Close()
		e.client = nil
		return err
	}
	return nil
}

// Ping checks if the connection is alive.
func (e *Engine) Ping() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.client == nil {
		return fmt.Errorf("not connected")
	}
	return e.client.Ping()
}

// Events returns the channel the watcher delivers on.
func (e *Engine) Events() <-chan playback.Event {
	return e.events
}

// Load replaces the MPD queue with the given stream URL and starts it.
func (e *Engine) Load(_ context.Context, url string) error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expectStop = false
	if err := e.client.Clear(); err != nil {
		return fmt.Errorf("failed to clear MPD queue: %w", err)
	}
	if err := e.client.Add(url); err != nil {
		return fmt.Errorf("failed to add stream: %w", err)
	}
	if err := e.client.Play(0); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}
	return nil
}

// Pause suspends output.
func (e *Engine) Pause() error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client.Pause(true)
}

// Resume continues suspended output.
func (e *Engine) Resume() error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client.Pause(false)
}

// Seek moves the playhead within the current song. A stopped player has
// no current song; in that case the loaded stream is restarted from the
// queue head, which is what a repeat replay needs after a natural end.
func (e *Engine) Seek(seconds float64) error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	status, err := e.client.Status()
	if err != nil {
		return err
	}

	songPos, ok := currentSongPos(status)
	if !ok {
		e.expectStop = false
		if err := e.client.Play(0); err != nil {
			return fmt.Errorf("failed to restart playback: %w", err)
		}
		if int(seconds) == 0 {
			return nil
		}
		songPos = 0
	}

	return e.client.Seek(songPos, int(seconds))
}

// currentSongPos reads the queue position of the current song from an MPD
// status response. A stopped player reports no song key.
func currentSongPos(status mpd.Attrs) (int, bool) {
	pos, err := strconv.Atoi(status["song"])
	if err != nil {
		return 0, false
	}
	return pos, true
}

// SetVolume maps [0,1] onto MPD's 0-100 scale.
func (e *Engine) SetVolume(v float64) error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	vol := int(v * 100)
	if vol < 0 {
		vol = 0
	} else if vol > 100 {
		vol = 100
	}
	return e.client.SetVolume(vol)
}

// Stop halts output. The resulting idle event is not reported as a track
// end.
func (e *Engine) Stop() error {
	if err := e.ensureConnected(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.expectStop = true
	return e.client.Stop()
}

// Watch runs the idle watcher and the progress poller until the context
// is cancelled, translating MPD subsystem changes into engine events.
// It retries watcher creation on failure rather than giving up.
func (e *Engine) Watch(ctx context.Context) {
	defer close(e.events)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	var idle <-chan string
	for {
		if idle == nil {
			watcher, err := mpd.NewWatcher("tcp", addr, e.password, "player")
			if err != nil {
				log.Warn().Err(err).Msg("MPD watcher unavailable, retrying")
				select {
				case <-ctx.Done():
					return
				case <-time.After(5 * time.Second):
					continue
				}
			}
			e.mu.Lock()
			e.watcher = watcher
			e.mu.Unlock()
			idle = watcher.Event
		}

		select {
		case <-ctx.Done():
			return
		case _, ok := <-idle:
			if !ok {
				idle = nil
				continue
			}
			e.onPlayerChange()
		case <-ticker.C:
			e.pollProgress()
		}
	}
}

// onPlayerChange inspects MPD state after a "player" idle event.
func (e *Engine) onPlayerChange() {
	status, err := e.status()
	if err != nil {
		log.Warn().Err(err).Msg("status after player change failed")
		return
	}

	state := status["state"]

	e.mu.Lock()
	prev := e.lastState
	e.lastState = state
	stopped := e.expectStop
	e.mu.Unlock()

	switch state {
	case "play":
		if prev != "play" {
			e.emit(playback.Event{Type: playback.EventReady})
		}
	case "stop":
		if prev == "play" && !stopped {
			e.emit(playback.Event{Type: playback.EventEnded})
		}
	}
}

// pollProgress emits a time update while MPD reports playback, plus
// stall transitions when elapsed time freezes mid-play.
func (e *Engine) pollProgress() {
	status, err := e.status()
	if err != nil {
		return
	}

	state := status["state"]
	elapsed, _ := strconv.ParseFloat(status["elapsed"], 64)
	duration, _ := strconv.ParseFloat(status["duration"], 64)

	if ev, ok := e.stall.observe(state, elapsed); ok {
		e.emit(ev)
	}
	if state != "play" {
		return
	}

	e.emit(playback.Event{
		Type:     playback.EventTimeUpdate,
		Position: elapsed,
		Duration: duration,
	})
}

func (e *Engine) status() (mpd.Attrs, error) {
	if err := e.ensureConnected(); err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.client.Status()
}

// emit drops events rather than blocking when the consumer lags.
func (e *Engine) emit(ev playback.Event) {
	select {
	case e.events <- ev:
	default:
		log.Warn().Int("type", int(ev.Type)).Msg("engine event dropped")
	}
}
