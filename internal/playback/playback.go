// Package playback binds the queue, the stream resolver and the audio
// engine into a single orchestrator that owns all playback decisions.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/domain/player"
	"github.com/chorusfm/chorus-backend/internal/domain/queue"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// ResolveTimeout bounds a single track resolution across all providers.
const ResolveTimeout = 45 * time.Second

// EventType identifies an engine event.
type EventType int

const (
	// EventReady fires once the engine has buffered enough to play.
	EventReady EventType = iota
	// EventTimeUpdate carries playback progress.
	EventTimeUpdate
	// EventEnded fires when the current track finished on its own.
	EventEnded
	// EventStalled fires when the engine is rebuffering.
	EventStalled
)

// Event is an engine notification consumed by the orchestrator run loop.
type Event struct {
	Type     EventType
	Position float64
	Duration float64
}

// Engine is the audio output the orchestrator drives. Implementations
// deliver Events on the channel returned by Events until closed.
type Engine interface {
	Load(ctx context.Context, url string) error
	Pause() error
	Resume() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	Stop() error
	Events() <-chan Event
}

// Resolver turns a track ID into a playable stream.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (*track.Resolution, error)
}

// Orchestrator serializes every playback decision. All intent methods and
// the engine event loop funnel through one mutex, so the queue itself
// needs no locking.
type Orchestrator struct {
	mu sync.Mutex

	queue    *queue.Queue
	resolver Resolver
	engine   Engine
	state    *player.State
	logger   zerolog.Logger

	// gen tags the in-flight resolution; a result whose tag no longer
	// matches is dropped instead of hijacking playback.
	gen       uint64
	pendingID string

	onState func(player.Snapshot)
	onQueue func([]track.Track)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithLogger overrides the default logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// OnStateChange registers a callback invoked (outside the lock is not
// guaranteed; keep it cheap) after every state mutation.
func OnStateChange(fn func(player.Snapshot)) Option {
	return func(o *Orchestrator) { o.onState = fn }
}

// OnQueueChange registers a callback invoked after every queue mutation.
func OnQueueChange(fn func([]track.Track)) Option {
	return func(o *Orchestrator) { o.onQueue = fn }
}

// New creates an orchestrator around the given collaborators.
func New(q *queue.Queue, r Resolver, e Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		queue:    q,
		resolver: r,
		engine:   e,
		state:    player.NewState(),
		logger:   log.With().Str("component", "playback").Logger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State exposes the playback state for read access.
func (o *Orchestrator) State() *player.State {
	return o.state
}

// Snapshot returns the current playback state.
func (o *Orchestrator) Snapshot() player.Snapshot {
	return o.state.Snapshot()
}

// QueueTracks returns a copy of the queue contents.
func (o *Orchestrator) QueueTracks() []track.Track {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.queue.Tracks()
}

// QueueIndex returns the cursor position.
func (o *Orchestrator) QueueIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.queue.CurrentIndex()
}

// Run consumes engine events until the context is cancelled or the engine
// closes its event channel.
func (o *Orchestrator) Run(ctx context.Context) {
	events := o.engine.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			o.handleEvent(ctx, ev)
		}
	}
}

func (o *Orchestrator) handleEvent(ctx context.Context, ev Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch ev.Type {
	case EventReady:
		o.state.SetPlaying(true)
		o.pushState()
	case EventTimeUpdate:
		o.state.UpdateProgress(ev.Position, ev.Duration)
		o.pushState()
	case EventStalled:
		o.state.SetLoading(true)
		o.pushState()
	case EventEnded:
		o.onEnded(ctx)
	}
}

// onEnded decides what plays after a natural track end. Caller holds the
// lock.
func (o *Orchestrator) onEnded(ctx context.Context) {
	if o.state.Repeat() == queue.RepeatOne {
		if err := o.engine.Seek(0); err != nil {
			o.logger.Warn().Err(err).Msg("repeat seek failed")
		}
		if err := o.engine.Resume(); err != nil {
			o.logger.Warn().Err(err).Msg("repeat resume failed")
		}
		o.state.UpdateProgress(0, 0)
		o.state.SetPlaying(true)
		o.pushState()
		return
	}

	if _, ok := o.queue.Advance(o.state.Shuffle(), o.state.Repeat()); !ok {
		// Queue exhausted: keep the last track on display, stop output.
		o.state.SetPlaying(false)
		o.state.UpdateProgress(0, 0)
		if err := o.engine.Stop(); err != nil {
			o.logger.Warn().Err(err).Msg("stop failed")
		}
		o.pushState()
		return
	}
	o.startCurrent(ctx)
}

// PlayNow replaces the queue with t followed by tail and starts playing t.
func (o *Orchestrator) PlayNow(ctx context.Context, t track.Track, tail []track.Track) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue.Replace(t, tail)
	o.pushQueue()
	o.startCurrent(ctx)
}

// Enqueue appends tracks; with playNow set the first appended track starts
// immediately. Appending to an empty queue makes the first track current
// but leaves it to TogglePlay to start it.
func (o *Orchestrator) Enqueue(ctx context.Context, tracks []track.Track, playNow bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.queue.Append(tracks, playNow) == -1 {
		return
	}
	o.pushQueue()
	if playNow {
		o.startCurrent(ctx)
	}
}

// JumpTo starts playback at the given queue index.
func (o *Orchestrator) JumpTo(ctx context.Context, index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.queue.JumpTo(index); !ok {
		return
	}
	o.startCurrent(ctx)
}

// RemoveAt removes a queue entry. Removing the playing entry starts
// whatever slid into its place, or stops when the queue emptied.
func (o *Orchestrator) RemoveAt(ctx context.Context, index int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	removedCurrent := o.queue.RemoveAt(index)
	o.pushQueue()
	if !removedCurrent {
		return
	}
	if _, ok := o.queue.Current(); ok {
		o.startCurrent(ctx)
		return
	}
	o.state.SetCurrent(nil)
	o.state.SetPlaying(false)
	if err := o.engine.Stop(); err != nil {
		o.logger.Warn().Err(err).Msg("stop failed")
	}
	o.pushState()
}

// SkipNext moves to the next track. A manual skip always moves;
// repeat-one only binds natural track ends.
func (o *Orchestrator) SkipNext(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mode := o.state.Repeat()
	if mode == queue.RepeatOne {
		mode = queue.RepeatAll
	}
	if _, ok := o.queue.Advance(o.state.Shuffle(), mode); !ok {
		o.state.SetPlaying(false)
		if err := o.engine.Stop(); err != nil {
			o.logger.Warn().Err(err).Msg("stop failed")
		}
		o.pushState()
		return
	}
	o.startCurrent(ctx)
}

// SkipPrev restarts the current track when it barely started, and moves
// the cursor back otherwise.
func (o *Orchestrator) SkipPrev(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.queue.Retreat(o.state.CurrentTime(), o.state.Repeat()); !ok {
		return
	}
	o.startCurrent(ctx)
}

// TogglePlay pauses active playback or resumes paused playback. With no
// current track it starts the queue cursor, if any.
func (o *Orchestrator) TogglePlay(ctx context.Context) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.IsPlaying() {
		if err := o.engine.Pause(); err != nil {
			o.logger.Warn().Err(err).Msg("pause failed")
		}
		o.state.SetPlaying(false)
		o.pushState()
		return
	}

	if _, ok := o.state.Current(); ok {
		if err := o.engine.Resume(); err != nil {
			o.logger.Warn().Err(err).Msg("resume failed")
		}
		o.state.SetPlaying(true)
		o.pushState()
		return
	}

	if _, ok := o.queue.Current(); ok {
		o.startCurrent(ctx)
	}
}

// Seek moves the playhead within the current track.
func (o *Orchestrator) Seek(seconds float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if seconds < 0 {
		seconds = 0
	}
	if err := o.engine.Seek(seconds); err != nil {
		o.logger.Warn().Err(err).Msg("seek failed")
		return
	}
	o.state.UpdateProgress(seconds, 0)
	o.pushState()
}

// SetVolume sets the output volume in [0,1].
func (o *Orchestrator) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.SetVolume(v)
	if !o.state.Muted() {
		if err := o.engine.SetVolume(o.state.Volume()); err != nil {
			o.logger.Warn().Err(err).Msg("set volume failed")
		}
	}
	o.pushState()
}

// ToggleMute silences the engine without losing the stored volume.
func (o *Orchestrator) ToggleMute() {
	o.mu.Lock()
	defer o.mu.Unlock()
	target := o.state.Volume()
	if o.state.ToggleMute() {
		target = 0
	}
	if err := o.engine.SetVolume(target); err != nil {
		o.logger.Warn().Err(err).Msg("set volume failed")
	}
	o.pushState()
}

// ToggleShuffle flips shuffle mode.
func (o *Orchestrator) ToggleShuffle() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.ToggleShuffle()
	o.pushState()
}

// CycleRepeat advances repeat off -> all -> one -> off.
func (o *Orchestrator) CycleRepeat() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.CycleRepeat()
	o.pushState()
}

// startCurrent begins an asynchronous resolution of the queue cursor
// track. Caller holds the lock.
func (o *Orchestrator) startCurrent(ctx context.Context) {
	t, ok := o.queue.Current()
	if !ok {
		return
	}

	o.gen++
	gen := o.gen
	o.pendingID = t.ID

	o.state.SetCurrent(&t)
	o.state.SetLoading(true)
	o.state.UpdateProgress(0, 0)
	o.pushState()

	// The resolution must outlive the intent that requested it: HTTP
	// handlers pass a request-scoped context that is cancelled as soon as
	// the response is written.
	go o.resolve(context.WithoutCancel(ctx), gen, t)
}

// resolve runs outside the lock and re-enters through apply.
func (o *Orchestrator) resolve(ctx context.Context, gen uint64, t track.Track) {
	rctx, cancel := context.WithTimeout(ctx, ResolveTimeout)
	defer cancel()

	res, err := o.resolver.Resolve(rctx, t.ID)
	o.apply(ctx, gen, t.ID, res, err)
}

// apply installs a resolution result, unless a newer intent superseded it.
func (o *Orchestrator) apply(ctx context.Context, gen uint64, trackID string, res *track.Resolution, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.gen || trackID != o.pendingID {
		o.logger.Debug().Str("videoId", trackID).Msg("dropping stale resolution")
		return
	}

	if err != nil {
		o.logger.Error().Err(err).Str("videoId", trackID).Msg("resolution failed")
		o.state.SetPlaying(false)
		o.state.SetError("Could not get audio stream from any source")
		o.pushState()
		return
	}

	// Resolved metadata is usually richer than what search returned.
	meta := res.Metadata(trackID)
	o.queue.MergeCurrent(meta)
	if cur, ok := o.queue.Current(); ok {
		o.state.SetCurrent(&cur)
	}

	if o.queue.Remaining() == 0 && o.queue.AutoExtend(res.Related) > 0 {
		o.pushQueue()
	}

	if err := o.engine.Load(ctx, res.AudioURL); err != nil {
		// Output refused the stream; stay paused and resumable.
		o.logger.Warn().Err(err).Str("videoId", trackID).Msg("engine load rejected")
		o.state.SetPlaying(false)
		o.pushState()
		return
	}

	if res.Duration > 0 {
		o.state.UpdateProgress(0, float64(res.Duration))
	}
	o.state.SetPlaying(true)
	o.pushState()
}

func (o *Orchestrator) pushState() {
	if o.onState != nil {
		o.onState(o.state.Snapshot())
	}
}

func (o *Orchestrator) pushQueue() {
	if o.onQueue != nil {
		o.onQueue(o.queue.Tracks())
	}
}
