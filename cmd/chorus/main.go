// Package main is the entry point for the Chorus music streaming backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chorusfm/chorus-backend/internal/config"
	"github.com/chorusfm/chorus-backend/internal/domain/catalog"
	"github.com/chorusfm/chorus-backend/internal/domain/library"
	"github.com/chorusfm/chorus-backend/internal/domain/player"
	"github.com/chorusfm/chorus-backend/internal/domain/queue"
	"github.com/chorusfm/chorus-backend/internal/domain/track"
	"github.com/chorusfm/chorus-backend/internal/infra/mpdengine"
	"github.com/chorusfm/chorus-backend/internal/infra/piped"
	"github.com/chorusfm/chorus-backend/internal/infra/store"
	"github.com/chorusfm/chorus-backend/internal/infra/ytdlp"
	"github.com/chorusfm/chorus-backend/internal/playback"
	"github.com/chorusfm/chorus-backend/internal/resolver"
	"github.com/chorusfm/chorus-backend/internal/transport/httpapi"
	"github.com/chorusfm/chorus-backend/internal/transport/socketio"
	"github.com/chorusfm/chorus-backend/internal/version"
)

// sourceProbeInterval is how often the metadata source is re-probed until
// it answers.
const sourceProbeInterval = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Command line flags override environment configuration
	port := flag.String("port", cfg.Port, "HTTP server port")
	mpdHost := flag.String("mpd-host", cfg.MPDHost, "MPD host")
	mpdPort := flag.Int("mpd-port", cfg.MPDPort, "MPD port")
	mpdPassword := flag.String("mpd-password", cfg.MPDPassword, "MPD password")
	region := flag.String("region", cfg.Region, "Trending region code")
	cookieFile := flag.String("cookies", cfg.CookieFile, "Netscape cookie file for yt-dlp")
	staticDir := flag.String("static", "", "Directory to serve static files from (optional)")
	debug := flag.Bool("debug", cfg.Debug, "Enable debug logging")
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Personal Music Streaming Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("port", *port).
		Str("mpd_host", *mpdHost).
		Int("mpd_port", *mpdPort).
		Str("region", *region).
		Str("data_dir", cfg.DataDir).
		Bool("password_set", *mpdPassword != "").
		Msg("Configuration")

	// Library persistence
	db := store.NewDB(cfg.LibraryDBPath())
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open library database")
	}
	defer db.Close()

	librarySvc, err := library.NewService(db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load library")
	}

	// Metadata and stream sources
	pipedClient := piped.NewClient()
	extractor := ytdlp.NewExtractor(
		ytdlp.WithBinary(cfg.YTDLPPath),
		ytdlp.WithCookieFile(*cookieFile),
	)

	readiness := catalog.NewReadiness()
	catalogSvc := catalog.NewService(catalog.NewPipedSource(pipedClient), extractor, readiness, *region)

	streamResolver := resolver.New(
		[]resolver.Provider{
			resolver.NewPipedProvider(pipedClient),
			resolver.NewYTDLPProvider(extractor),
		},
		resolver.WithSearcher(catalogSvc),
	)

	// Playback engine. A missing MPD is not fatal: the engine reconnects
	// on demand and the catalog surface keeps working without it.
	engine := mpdengine.New(*mpdHost, *mpdPort, *mpdPassword)
	if err := engine.Connect(); err != nil {
		log.Warn().Err(err).Msg("MPD unavailable, playback disabled until it appears")
	}
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go catalogSvc.ProbeSource(ctx, sourceProbeInterval)

	// The debouncer is bound after the socket server exists; broadcasts
	// before that are dropped.
	var debouncer *socketio.BroadcastDebouncer
	orchestrator := playback.New(queue.New(), streamResolver, engine,
		playback.OnStateChange(func(player.Snapshot) {
			if debouncer != nil {
				debouncer.Trigger("state")
			}
		}),
		playback.OnQueueChange(func([]track.Track) {
			if debouncer != nil {
				debouncer.Trigger("queue")
			}
		}),
	)

	socketServer, err := socketio.NewServer(orchestrator)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	debouncer = socketio.NewBroadcastDebouncer(100*time.Millisecond,
		socketServer.BroadcastState, socketServer.BroadcastQueue)
	defer debouncer.Stop()

	go engine.Watch(ctx)
	go orchestrator.Run(ctx)

	// REST API
	api := httpapi.New(
		catalogSvc,
		streamResolver,
		resolver.NewYTDLPProvider(extractor),
		librarySvc,
		orchestrator,
		*region,
		httpapi.WithReadiness(readiness.Ready),
	)

	mux := api.Routes()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := engine.Ping(); err != nil {
			w.Write([]byte(`{"status":"ok","mpd":"disconnected"}`))
			return
		}
		w.Write([]byte(`{"status":"ok","mpd":"connected"}`))
	})

	// Version endpoint
	mux.HandleFunc("GET /api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Serve static files if directory specified (SPA mode)
	if *staticDir != "" {
		log.Info().Str("dir", *staticDir).Msg("Serving static files")
		fs := http.FileServer(http.Dir(*staticDir))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			path := *staticDir + r.URL.Path
			if r.URL.Path == "/" {
				path = *staticDir + "/index.html"
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				// For SPA routing, serve index.html for non-existing paths
				http.ServeFile(w, r, *staticDir+"/index.html")
				return
			}
			fs.ServeHTTP(w, r)
		})
	}

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", ":"+*port).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
