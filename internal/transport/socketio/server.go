// Package socketio pushes playback state to connected clients and accepts
// the same control commands as the REST surface.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/chorusfm/chorus-backend/internal/domain/player"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
)

// Player is the playback control surface the server drives.
type Player interface {
	PlayNow(ctx context.Context, t track.Track, tail []track.Track)
	Enqueue(ctx context.Context, tracks []track.Track, playNow bool)
	JumpTo(ctx context.Context, index int)
	RemoveAt(ctx context.Context, index int)
	SkipNext(ctx context.Context)
	SkipPrev(ctx context.Context)
	TogglePlay(ctx context.Context)
	Seek(seconds float64)
	SetVolume(v float64)
	ToggleMute()
	ToggleShuffle()
	CycleRepeat()
	Snapshot() player.Snapshot
	QueueTracks() []track.Track
	QueueIndex() int
}

// Server handles Socket.io connections and events.
type Server struct {
	io      *socket.Server
	player  Player
	mu      sync.RWMutex
	clients map[string]*socket.Socket
}

// NewServer creates a new Socket.io server bound to the player.
func NewServer(p Player) (*Server, error) {
	opts := socket.DefaultServerOptions()
	opts.SetPingTimeout(20 * time.Second)
	opts.SetPingInterval(25 * time.Second)
	opts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	server := socket.NewServer(nil, opts)

	s := &Server{
		io:      server,
		player:  p,
		clients: make(map[string]*socket.Socket),
	}

	s.setupHandlers()

	return s, nil
}

// decodeArg converts the loosely typed socket payload into a struct.
func decodeArg(args []any, v any) bool {
	if len(args) == 0 {
		return false
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func argFloat(args []any) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	f, ok := args[0].(float64)
	return f, ok
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	ctx := context.Background()

	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())

		log.Info().Str("id", clientID).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushQueue(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(...any) {
			s.pushState(client)
		})

		client.On("getQueue", func(...any) {
			s.pushQueue(client)
		})

		client.On("play", func(args ...any) {
			var req struct {
				Track track.Track   `json:"track"`
				Queue []track.Track `json:"queue"`
			}
			if !decodeArg(args, &req) || !req.Track.Valid() {
				log.Debug().Str("id", clientID).Msg("play with no usable track")
				return
			}
			s.player.PlayNow(ctx, req.Track, req.Queue)
		})

		client.On("enqueue", func(args ...any) {
			var req struct {
				Tracks  []track.Track `json:"tracks"`
				PlayNow bool          `json:"playNow"`
			}
			if !decodeArg(args, &req) || len(req.Tracks) == 0 {
				return
			}
			s.player.Enqueue(ctx, req.Tracks, req.PlayNow)
		})

		client.On("next", func(...any) {
			s.player.SkipNext(ctx)
		})

		client.On("prev", func(...any) {
			s.player.SkipPrev(ctx)
		})

		client.On("toggle", func(...any) {
			s.player.TogglePlay(ctx)
		})

		client.On("seek", func(args ...any) {
			if pos, ok := argFloat(args); ok {
				s.player.Seek(pos)
			}
		})

		client.On("volume", func(args ...any) {
			if vol, ok := argFloat(args); ok {
				s.player.SetVolume(vol)
			}
		})

		client.On("mute", func(...any) {
			s.player.ToggleMute()
		})

		client.On("shuffle", func(...any) {
			s.player.ToggleShuffle()
		})

		client.On("repeat", func(...any) {
			s.player.CycleRepeat()
		})

		client.On("playAtIndex", func(args ...any) {
			if idx, ok := argFloat(args); ok {
				s.player.JumpTo(ctx, int(idx))
			}
		})

		client.On("removeFromQueue", func(args ...any) {
			if idx, ok := argFloat(args); ok {
				s.player.RemoveAt(ctx, int(idx))
			}
		})
	})
}

// pushState sends current state to a client.
func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.player.Snapshot())
}

// pushQueue sends current queue to a client.
func (s *Server) pushQueue(client *socket.Socket) {
	client.Emit("pushQueue", s.queuePayload())
}

func (s *Server) queuePayload() map[string]any {
	tracks := s.player.QueueTracks()
	if tracks == nil {
		tracks = []track.Track{}
	}
	return map[string]any{
		"tracks": tracks,
		"index":  s.player.QueueIndex(),
	}
}

// BroadcastState sends state to all connected clients.
func (s *Server) BroadcastState() {
	state := s.player.Snapshot()
	s.io.Emit("pushState", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// BroadcastQueue sends the queue to all connected clients.
func (s *Server) BroadcastQueue() {
	s.io.Emit("pushQueue", s.queuePayload())
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.io.Close(nil)
	return nil
}
