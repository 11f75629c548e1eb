package cast

import (
	"context"
	"time"

	"github.com/smazurov/ffmcast/internal/ffmpeg"
	"github.com/smazurov/ffmcast/internal/logging"
	"github.com/smazurov/ffmcast/internal/process"
)

// Runner runs an ffmpeg argv to completion, feeding each output line to out.
type Runner interface {
	Run(ctx context.Context, id string, args []string, out process.OutputHandler) process.Result
}

// ProcessRunner runs ffmpeg as a child process. ffmpeg's own output is
// logged through the "ffmpeg" module logger at the level ffmpeg tagged it
// with.
type ProcessRunner struct {
	logger       logging.Logger
	ffmpegLogger logging.Logger
	stopTimeout  time.Duration
}

// NewProcessRunner creates a ProcessRunner using the module loggers.
// stopTimeout is how long ffmpeg gets to exit after SIGINT before it is
// killed; zero keeps the process default.
func NewProcessRunner(stopTimeout time.Duration) *ProcessRunner {
	return &ProcessRunner{
		logger:       logging.GetLogger("process"),
		ffmpegLogger: logging.GetLogger("ffmpeg"),
		stopTimeout:  stopTimeout,
	}
}

// Run implements Runner.
func (r *ProcessRunner) Run(ctx context.Context, id string, args []string, out process.OutputHandler) process.Result {
	p := process.NewProcess(id, args, r.logger)
	p.SetLogParser(r.ffmpegLogger, ffmpeg.ParseLogLevel)
	p.SetOutputHandler(out)
	if r.stopTimeout > 0 {
		p.SetGracefulTimeout(r.stopTimeout)
	}
	return p.Run(ctx)
}
