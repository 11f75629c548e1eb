// Package logging provides structured logging with per-module log levels.
//
// Records go to stderr as text or JSON, and additionally to the systemd
// journal when Config.Journal is set and journald is reachable
// ([github.com/coreos/go-systemd/v22/journal.Enabled]). Stdout is left to
// the interactive prompts.
//
// Initialize once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"ffmpeg": "warn",
//		},
//	})
//
// and get a logger per module:
//
//	logger := logging.GetLogger("cast")
//	logger.Info("Probed media", "file", path, "duration", desc.Duration)
//
// Loggers obtained before Initialize are updated in place.
//
// With the journal enabled:
//
//	journalctl -t ffmcast MODULE=ffmpeg
package logging
