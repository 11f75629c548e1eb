package events

// Event type constants for kelindar/event.
const (
	TypeSessionStarted uint32 = iota + 1
	TypeSessionProgress
	TypeSessionFinished
	TypeCommandBuilt
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionStartedEvent is published right before ffmpeg is spawned.
type SessionStartedEvent struct {
	SessionID   string `json:"session_id" example:"cast-1" doc:"Session identifier"`
	File        string `json:"file" example:"movie.mkv" doc:"Input media file"`
	Command     string `json:"command" doc:"Shell-quoted ffmpeg command line"`
	PlaybackURL string `json:"playback_url" example:"http://localhost:8000/stream.ogg" doc:"Listener URL"`
	Timestamp   string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionStartedEvent.
func (e SessionStartedEvent) Type() uint32 { return TypeSessionStarted }

// SessionProgressEvent carries one parsed ffmpeg -stats line.
type SessionProgressEvent struct {
	SessionID   string  `json:"session_id" example:"cast-1" doc:"Session identifier"`
	Frame       int64   `json:"frame" example:"1200" doc:"Frames encoded so far"`
	FPS         float64 `json:"fps" example:"24" doc:"Encoding frames per second"`
	BitrateKbps float64 `json:"bitrate_kbps" example:"1024.5" doc:"Output bitrate"`
	Speed       float64 `json:"speed" example:"1.01" doc:"Encoding speed relative to realtime"`
	Time        string  `json:"time" example:"00:00:50.00" doc:"Output position"`
}

// Type returns the event type identifier for SessionProgressEvent.
func (e SessionProgressEvent) Type() uint32 { return TypeSessionProgress }

// SessionFinishedEvent is published once ffmpeg has exited or been stopped.
type SessionFinishedEvent struct {
	SessionID string  `json:"session_id" example:"cast-1" doc:"Session identifier"`
	Outcome   string  `json:"outcome" example:"success" doc:"success, cancelled or failed"`
	ExitCode  int     `json:"exit_code" example:"0" doc:"ffmpeg exit code"`
	Error     string  `json:"error,omitempty" doc:"Failure description"`
	Elapsed   float64 `json:"elapsed_seconds" example:"5400.2" doc:"Wall time ffmpeg ran for"`
	Timestamp string  `json:"timestamp" example:"2026-01-27T12:00:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for SessionFinishedEvent.
func (e SessionFinishedEvent) Type() uint32 { return TypeSessionFinished }

// CommandBuiltEvent is published for every successfully built ffmpeg argv.
type CommandBuiltEvent struct {
	File     string `json:"file" example:"movie.mkv" doc:"Input media file"`
	Subtitle string `json:"subtitle" example:"text" doc:"none, text or bitmap"`
}

// Type returns the event type identifier for CommandBuiltEvent.
func (e CommandBuiltEvent) Type() uint32 { return TypeCommandBuilt }
