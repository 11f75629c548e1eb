// Package api serves ffmcast's preview API: probe a file and build the
// ffmpeg command for it without running anything.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/ffmcast/internal/config"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/logging"
	"github.com/smazurov/ffmcast/internal/probe"
	"github.com/smazurov/ffmcast/internal/version"
)

// Options configures a Server.
type Options struct {
	Prober         probe.Prober
	Defaults       config.Options
	Bus            *events.Bus  // optional, receives CommandBuiltEvent
	MetricsHandler http.Handler // optional, served at GET /metrics
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	prober     probe.Prober
	bus        *events.Bus
	logger     *slog.Logger

	mu       sync.RWMutex // guards defaults and httpServer
	defaults config.Options
}

// NewServer creates the server and registers every route on a fresh mux.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	cfg := huma.DefaultConfig("ffmcast API", version.Get().Version)
	cfg.Info.Description = "Probe media files and preview the ffmpeg commands that stream them to Icecast"
	cfg.Servers = []*huma.Server{}

	s := newServer(opts, humago.New(mux, cfg))
	s.mux = mux

	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}
	return s
}

// newServer registers the routes on api. Split out so tests can use humatest.
func newServer(opts *Options, api huma.API) *Server {
	prober := opts.Prober
	if prober == nil {
		prober = probe.Probe
	}

	s := &Server{
		api:      api,
		prober:   prober,
		bus:      opts.Bus,
		defaults: opts.Defaults,
		logger:   logging.GetLogger("api"),
	}
	api.UseMiddleware(requestLogger(logging.GetLogger("http")))
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// SetDefaults replaces the defaults applied to command requests. Safe for
// concurrent use; the config watcher calls it on reload.
func (s *Server) SetDefaults(o config.Options) {
	s.mu.Lock()
	s.defaults = o
	s.mu.Unlock()
	s.logger.Info("Defaults updated", "ingest", o.Ingest().PlaybackURL(),
		"audio_bitrate", o.AudioBitrate, "video_bitrate", o.VideoBitrate)
}

func (s *Server) currentDefaults() config.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting ffmcast API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	s.logger.Info("Stopping API server")
	return srv.Shutdown(ctx)
}
