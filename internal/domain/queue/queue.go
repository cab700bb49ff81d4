// Package queue owns the ordered play queue and its cursor, and computes
// next/previous positions under shuffle and repeat modes.
package queue

import (
	"math/rand/v2"

	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// RepeatMode controls what happens when playback reaches either end of
// the queue.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next cycles off -> all -> one -> off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// RestartThreshold is how far into a track "previous" still means
// "go back one" rather than "restart this one", in seconds.
const RestartThreshold = 3.0

// Queue is an ordered track sequence with a cursor. The cursor is -1 only
// when the queue is empty. Queue is not safe for concurrent use; all
// mutation is serialized through the playback orchestrator.
type Queue struct {
	tracks []track.Track
	cursor int

	// randIntN is swapped in tests for deterministic shuffle.
	randIntN func(n int) int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		cursor:   -1,
		randIntN: rand.IntN,
	}
}

// Replace makes the queue [t, tail...] and sets the cursor to 0.
func (q *Queue) Replace(t track.Track, tail []track.Track) {
	q.tracks = append([]track.Track{t}, tail...)
	q.cursor = 0
}

// Append extends the queue. When playNow is set the cursor jumps to the
// first appended element. Returns the index of the first appended element,
// or -1 when nothing was appended.
func (q *Queue) Append(tracks []track.Track, playNow bool) int {
	if len(tracks) == 0 {
		return -1
	}
	first := len(q.tracks)
	q.tracks = append(q.tracks, tracks...)
	if playNow || q.cursor == -1 {
		q.cursor = first
	}
	return first
}

// Advance computes the next cursor position for the given modes and moves
// the cursor there. The second return is false when the queue is
// exhausted, in which case the cursor does not move.
//
// Repeat-one re-signals the current index; the caller restarts playback at
// zero without the cursor changing. Shuffle picks a uniformly random index
// and may land on the current one — that behavior is deliberate.
func (q *Queue) Advance(shuffle bool, repeat RepeatMode) (int, bool) {
	if len(q.tracks) == 0 || q.cursor == -1 {
		return -1, false
	}

	if repeat == RepeatOne {
		return q.cursor, true
	}

	if shuffle {
		q.cursor = q.randIntN(len(q.tracks))
		return q.cursor, true
	}

	next := q.cursor + 1
	if next >= len(q.tracks) {
		if repeat != RepeatAll {
			return -1, false
		}
		next = 0
	}
	q.cursor = next
	return q.cursor, true
}

// Retreat computes the previous position. When playback is within
// RestartThreshold seconds of the start the current index is re-signalled
// (restart); otherwise the cursor moves back, wrapping to the end only
// under repeat-all and clamping to 0 otherwise.
func (q *Queue) Retreat(elapsed float64, repeat RepeatMode) (int, bool) {
	if len(q.tracks) == 0 || q.cursor == -1 {
		return -1, false
	}

	if elapsed <= RestartThreshold {
		return q.cursor, true
	}

	prev := q.cursor - 1
	if prev < 0 {
		if repeat == RepeatAll {
			prev = len(q.tracks) - 1
		} else {
			prev = 0
		}
	}
	q.cursor = prev
	return q.cursor, true
}

// RemoveAt removes the element at index. Removing an element before the
// cursor shifts the cursor down so the current track keeps its identity.
// Removing the current element leaves the cursor pointing at the next one
// (clamped); the caller decides whether to re-resolve it. Returns whether
// the removed element was the current one.
func (q *Queue) RemoveAt(index int) (removedCurrent bool) {
	if index < 0 || index >= len(q.tracks) {
		return false
	}

	removedCurrent = index == q.cursor
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)

	switch {
	case len(q.tracks) == 0:
		q.cursor = -1
	case index < q.cursor:
		q.cursor--
	case q.cursor >= len(q.tracks):
		q.cursor = len(q.tracks) - 1
	}
	return removedCurrent
}

// AutoExtend appends related tracks when nothing remains after the cursor.
// Tracks whose identifier already appears anywhere in the queue are
// skipped. Returns the number of tracks appended.
func (q *Queue) AutoExtend(related []track.Track) int {
	if len(related) == 0 || q.Remaining() > 0 {
		return 0
	}

	present := make(map[string]struct{}, len(q.tracks))
	for _, t := range q.tracks {
		present[t.ID] = struct{}{}
	}

	added := 0
	for _, t := range related {
		if !t.Valid() {
			continue
		}
		if _, ok := present[t.ID]; ok {
			continue
		}
		present[t.ID] = struct{}{}
		q.tracks = append(q.tracks, t)
		added++
	}
	if added > 0 && q.cursor == -1 {
		q.cursor = 0
	}
	return added
}

// Remaining is the number of tracks after the cursor.
func (q *Queue) Remaining() int {
	if q.cursor == -1 {
		return 0
	}
	return len(q.tracks) - q.cursor - 1
}

// Current returns the track under the cursor.
func (q *Queue) Current() (track.Track, bool) {
	if q.cursor < 0 || q.cursor >= len(q.tracks) {
		return track.Track{}, false
	}
	return q.tracks[q.cursor], true
}

// CurrentIndex returns the cursor (-1 when empty).
func (q *Queue) CurrentIndex() int {
	return q.cursor
}

// JumpTo moves the cursor to index.
func (q *Queue) JumpTo(index int) (track.Track, bool) {
	if index < 0 || index >= len(q.tracks) {
		return track.Track{}, false
	}
	q.cursor = index
	return q.tracks[index], true
}

// MergeCurrent fills missing fields of the current track from meta.
func (q *Queue) MergeCurrent(meta track.Track) {
	if q.cursor < 0 || q.cursor >= len(q.tracks) {
		return
	}
	q.tracks[q.cursor] = q.tracks[q.cursor].Merge(meta)
}

// Tracks returns a copy of the queue contents.
func (q *Queue) Tracks() []track.Track {
	out := make([]track.Track, len(q.tracks))
	copy(out, q.tracks)
	return out
}

// Len returns the queue length.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.tracks = nil
	q.cursor = -1
}
