// Package process runs a transcoder subprocess to completion.
//
// Process wraps os/exec for a single argument vector:
//   - SIGINT/SIGTERM to ffmcast, or context cancellation, forwards SIGINT to
//     the child and waits a graceful timeout before SIGKILL
//   - stdout/stderr are split on newlines and carriage returns, so ffmpeg
//     -stats progress arrives line by line
//   - every line goes through an optional LogParser into the process logger
//     and to an optional OutputHandler
//
// Run reports one of three outcomes: success (exit 0), cancelled (stopped by
// signal or context) or failed (non-zero exit or spawn error).
//
// Example:
//
//	p := process.NewProcess("cast", args, logger)
//	p.SetLogParser(logging.GetLogger("ffmpeg"), ffmpeg.ParseLogLevel)
//	res := p.Run(ctx)
//	if res.Outcome == process.OutcomeCancelled {
//	    ...
//	}
package process
