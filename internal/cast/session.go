// Package cast runs the interactive flow that turns a media file into an
// Icecast stream: probe, ask, build the ffmpeg command, confirm, run.
package cast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/smazurov/ffmcast/internal/config"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/logging"
	"github.com/smazurov/ffmcast/internal/media"
	"github.com/smazurov/ffmcast/internal/probe"
	"github.com/smazurov/ffmcast/internal/process"
	"github.com/smazurov/ffmcast/internal/prompt"
	"github.com/smazurov/ffmcast/internal/timestamp"
)

// Exit codes returned by Session.Run.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Banners printed when ffmpeg stops.
const (
	BannerFinished  = "***** STREAM FINISHED *****"
	BannerCancelled = "***** STREAM CANCELLED *****"
	BannerFailed    = "***** STREAM FAILED *****"
)

var (
	// ErrNoMediaFile is returned when Run is called without a file.
	ErrNoMediaFile = errors.New("no media file given")
	// ErrMediaNotFound is returned when the media file does not exist.
	ErrMediaNotFound = errors.New("media file does not exist")
)

// Observer is told about session activity synchronously, before the
// matching event is published on the bus. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveProgress(events.SessionProgressEvent)
	SessionFinished(events.SessionFinishedEvent)
	CommandBuilt(events.CommandBuiltEvent)
}

// Session is one interactive ffmcast run.
type Session struct {
	id       string
	opts     config.Options
	prompter *prompt.Prompter
	prober   probe.Prober
	runner   Runner
	bus      *events.Bus
	observer Observer
	logger   *slog.Logger
	executed bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBus publishes session events on bus.
func WithBus(bus *events.Bus) SessionOption {
	return func(s *Session) {
		s.bus = bus
	}
}

// WithObserver reports session activity to o.
func WithObserver(o Observer) SessionOption {
	return func(s *Session) {
		s.observer = o
	}
}

// WithID overrides the generated session id.
func WithID(id string) SessionOption {
	return func(s *Session) {
		s.id = id
	}
}

// NewSession creates a session. opts supplies the prompt defaults and
// decides which prompts are shown.
func NewSession(opts config.Options, p *prompt.Prompter, prober probe.Prober, runner Runner, options ...SessionOption) *Session {
	s := &Session{
		id:       fmt.Sprintf("cast-%d", os.Getpid()),
		opts:     opts,
		prompter: p,
		prober:   prober,
		runner:   runner,
		logger:   logging.GetLogger("cast"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Run walks through the whole flow for file and returns the process exit
// code. Declining to execute and dry runs exit with ExitOK. A cancelled or
// failed stream exits with ExitFailure; so does any error, which is also
// returned.
func (s *Session) Run(ctx context.Context, file string) (int, error) {
	args, playbackURL, err := s.Prepare(ctx, file)
	if err != nil {
		return ExitFailure, err
	}

	if s.opts.DryRun {
		return ExitOK, nil
	}
	if !s.opts.Yes {
		ok, err := s.prompter.Confirm("Execute ffmpeg?")
		if err != nil {
			return ExitFailure, err
		}
		if !ok {
			s.logger.Info("Execution declined", "file", file)
			return ExitOK, nil
		}
	}

	return s.execute(ctx, file, args, playbackURL)
}

// Prepare probes file, asks every question and prints the resulting ffmpeg
// command and stream URL. It returns the argv and the playback URL.
func (s *Session) Prepare(ctx context.Context, file string) ([]string, string, error) {
	if file == "" {
		return nil, "", ErrNoMediaFile
	}
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("file %s: %w", file, ErrMediaNotFound)
		}
		return nil, "", err
	}

	desc, err := s.prober(ctx, file)
	if err != nil {
		return nil, "", err
	}
	s.logger.Debug("Probed media", "file", file, "duration", desc.Duration,
		"video", len(desc.Video), "audio", len(desc.Audio), "subtitles", len(desc.Subtitles))

	choices, err := s.ask(desc)
	if err != nil {
		return nil, "", err
	}

	req, args, err := s.build(desc, choices)
	if err != nil {
		return nil, "", err
	}

	playbackURL := req.Ingest.PlaybackURL()
	s.prompter.Section("ffmpeg command", ffmpeg.CommandLine(args)+"\n")
	s.prompter.Section("stream URL", playbackURL+"\n")
	return args, playbackURL, nil
}

// ask collects every answer, starting from the configured defaults.
func (s *Session) ask(desc *media.Descriptor) (Choices, error) {
	c := DefaultChoices()
	c.Ingest = s.opts.Ingest()
	c.AudioBitrate = s.opts.AudioBitrate
	c.VideoBitrate = s.opts.VideoBitrate
	c.ResolutionScale = s.opts.ResolutionScale

	var err error
	if s.opts.IcecastPrompt {
		if c.Ingest.Auth, err = s.prompter.Ask("Icecast Auth", c.Ingest.Auth, prompt.Auth); err != nil {
			return c, err
		}
		if c.Ingest.Host, err = s.prompter.Ask("Icecast Host", c.Ingest.Host, prompt.Any); err != nil {
			return c, err
		}
		if c.Ingest.Mount, err = s.prompter.Ask("Icecast Mount", c.Ingest.Mount, prompt.Any); err != nil {
			return c, err
		}
	}

	if s.opts.QualityPrompt {
		if c.AudioBitrate, err = s.prompter.Ask("Audio Bitrate", c.AudioBitrate, prompt.Bitrate); err != nil {
			return c, err
		}
		if c.VideoBitrate, err = s.prompter.Ask("Video Bitrate", c.VideoBitrate, prompt.Bitrate); err != nil {
			return c, err
		}
		if c.ResolutionScale, err = s.prompter.Ask("Resolution Scale", c.ResolutionScale, prompt.Scale); err != nil {
			return c, err
		}
	}

	if c.Seek, err = s.askSeek(desc.Duration); err != nil {
		return c, err
	}

	if c.Video, err = s.choose("Video Stream Selection", desc.Video, ffmpeg.FallbackFirst); err != nil {
		return c, err
	}
	if c.Audio, err = s.choose("Audio Stream Selection", desc.Audio, ffmpeg.FallbackFirst); err != nil {
		return c, err
	}
	if c.Subtitle, err = s.choose("Subtitle Stream Selection", desc.Subtitles, ffmpeg.FallbackNone); err != nil {
		return c, err
	}
	return c, nil
}

func (s *Session) askSeek(duration timestamp.Timestamp) (timestamp.Timestamp, error) {
	desc := fmt.Sprintf("Seek (00:00:00 - %s)", duration)
	for {
		answer, err := s.prompter.Ask(desc, timestamp.Timestamp(0).String(), prompt.Seek)
		if err != nil {
			return 0, err
		}
		seek, err := timestamp.Parse(answer)
		if err == nil {
			return seek, nil
		}
		s.prompter.Warn("%v", err)
	}
}

// choose shows a track menu until the answer names an existing track.
// The menu's default answer is the first entry.
func (s *Session) choose(description string, tracks []media.Track, fallback ffmpeg.Fallback) (int, error) {
	for {
		choice, err := s.prompter.SelectTrack(description, tracks, 0)
		if err != nil {
			return 0, err
		}
		if _, _, err := ffmpeg.SelectTrack(tracks, choice, fallback); err != nil {
			s.prompter.Warn("%v", err)
			continue
		}
		return choice, nil
	}
}

func (s *Session) build(desc *media.Descriptor, c Choices) (*ffmpeg.Request, []string, error) {
	req, err := BuildRequest(desc, c)
	if err != nil {
		return nil, nil, err
	}
	args, err := ffmpeg.BuildArgs(req, desc)
	if err != nil {
		return nil, nil, err
	}

	built := events.CommandBuiltEvent{File: desc.Filename, Subtitle: SubtitleMode(req)}
	if s.observer != nil {
		s.observer.CommandBuilt(built)
	}
	s.publish(built)
	return req, args, nil
}

// Executed reports whether Run got as far as starting ffmpeg.
func (s *Session) Executed() bool {
	return s.executed
}

func (s *Session) execute(ctx context.Context, file string, args []string, playbackURL string) (int, error) {
	s.executed = true
	started := time.Now()
	s.logger.Info("Starting stream", "session", s.id, "file", file, "url", playbackURL)
	s.publish(events.SessionStartedEvent{
		SessionID:   s.id,
		File:        file,
		Command:     ffmpeg.CommandLine(args),
		PlaybackURL: playbackURL,
		Timestamp:   started.UTC().Format(time.RFC3339),
	})

	result := s.runner.Run(ctx, s.id, args, process.OutputHandlerFunc(s.handleLine))
	s.prompter.Println()

	finished := events.SessionFinishedEvent{
		SessionID: s.id,
		Outcome:   string(result.Outcome),
		ExitCode:  result.ExitCode,
		Elapsed:   time.Since(started).Seconds(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if result.Err != nil {
		finished.Error = result.Err.Error()
	}
	if s.observer != nil {
		s.observer.SessionFinished(finished)
	}
	s.publish(finished)

	switch result.Outcome {
	case process.OutcomeSuccess:
		s.prompter.Println(BannerFinished)
		return ExitOK, nil
	case process.OutcomeCancelled:
		s.prompter.Println(BannerCancelled)
		return ExitFailure, nil
	default:
		s.prompter.Println(BannerFailed)
		s.logger.Error("ffmpeg failed", "session", s.id, "exit_code", result.ExitCode, "error", result.Err)
		if result.Err != nil {
			return ExitFailure, fmt.Errorf("ffmpeg: %w", result.Err)
		}
		return ExitFailure, fmt.Errorf("ffmpeg exited with code %d", result.ExitCode)
	}
}

// handleLine draws ffmpeg's stats line and reports it as progress.
func (s *Session) handleLine(_, line string) {
	stats, ok := ffmpeg.ParseStats(line)
	if !ok {
		return
	}
	s.prompter.Progress(line)

	progress := events.SessionProgressEvent{
		SessionID:   s.id,
		Frame:       stats.Frame,
		FPS:         stats.FPS,
		BitrateKbps: stats.BitrateKbps,
		Speed:       stats.Speed,
		Time:        stats.Time,
	}
	if s.observer != nil {
		s.observer.ObserveProgress(progress)
	}
	s.publish(progress)
}

func (s *Session) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}
