package cmd

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/ffmcast/internal/events"
)

// eventFlushTimeout bounds how long the CLI waits for the session events to
// be logged before exiting.
const eventFlushTimeout = 2 * time.Second

// sessionLog writes session events from the bus to the "events" logger.
type sessionLog struct {
	started      chan struct{}
	finished     chan struct{}
	startedOnce  sync.Once
	finishedOnce sync.Once
	unsubs       []func()
}

func newSessionLog(bus *events.Bus, logger *slog.Logger) *sessionLog {
	l := &sessionLog{started: make(chan struct{}), finished: make(chan struct{})}
	l.unsubs = []func(){
		bus.Subscribe(func(e events.SessionStartedEvent) {
			logger.Info("Session started", "session", e.SessionID, "file", e.File, "url", e.PlaybackURL)
			logger.Debug("Session command", "session", e.SessionID, "command", e.Command)
			l.startedOnce.Do(func() { close(l.started) })
		}),
		bus.Subscribe(func(e events.SessionProgressEvent) {
			logger.Debug("Session progress", "session", e.SessionID, "frame", e.Frame,
				"fps", e.FPS, "bitrate_kbps", e.BitrateKbps, "speed", e.Speed, "time", e.Time)
		}),
		bus.Subscribe(func(e events.SessionFinishedEvent) {
			attrs := []any{"session", e.SessionID, "outcome", e.Outcome,
				"exit_code", e.ExitCode, "elapsed_seconds", e.Elapsed}
			if e.Error != "" {
				attrs = append(attrs, "error", e.Error)
			}
			logger.Info("Session finished", attrs...)
			l.finishedOnce.Do(func() { close(l.finished) })
		}),
	}
	return l
}

// wait blocks until both the started and the finished event have been
// logged or timeout passes.
func (l *sessionLog) wait(timeout time.Duration) bool {
	deadline := time.After(timeout)
	for _, ch := range []chan struct{}{l.started, l.finished} {
		select {
		case <-ch:
		case <-deadline:
			return false
		}
	}
	return true
}

func (l *sessionLog) close() {
	for _, unsub := range l.unsubs {
		unsub()
	}
}
