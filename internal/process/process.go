package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/ffmcast/internal/logging"
)

// OutputHandler receives output lines from the subprocess.
type OutputHandler interface {
	HandleLine(source, line string)
}

// OutputHandlerFunc adapts a function to OutputHandler.
type OutputHandlerFunc func(source, line string)

// HandleLine calls f.
func (f OutputHandlerFunc) HandleLine(source, line string) { f(source, line) }

// LogParser parses a log line and returns the log level and message.
type LogParser func(line string) (level, msg string)

// exitCodeKilled is reported when the child had to be SIGKILLed.
const exitCodeKilled = 137

// Process manages one run of a subprocess.
type Process struct {
	id              string
	args            []string
	cmd             *exec.Cmd
	cmdMu           sync.Mutex
	logger          logging.Logger
	processLogger   logging.Logger // logger for process output (nil = use logger)
	logParser       LogParser      // nil = everything at info
	outputHandler   OutputHandler
	ctx             context.Context
	cancel          context.CancelFunc
	signals         []os.Signal
	gracefulTimeout time.Duration // timeout for graceful shutdown before force kill
	killTimeout     time.Duration // timeout after Kill() before giving up
}

// NewProcess creates a process for args, where args[0] is the executable.
func NewProcess(id string, args []string, logger logging.Logger) *Process {
	ctx, cancel := context.WithCancel(context.Background())
	return &Process{
		id:              id,
		args:            append([]string(nil), args...),
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		signals:         []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
}

// Args returns a copy of the argument vector.
func (p *Process) Args() []string {
	return append([]string(nil), p.args...)
}

// SetLogParser sets the logger and parser used for process output.
func (p *Process) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// SetOutputHandler sets a handler that receives every output line.
func (p *Process) SetOutputHandler(h OutputHandler) {
	p.outputHandler = h
}

// SetGracefulTimeout sets how long to wait after SIGINT before SIGKILL.
func (p *Process) SetGracefulTimeout(d time.Duration) {
	p.gracefulTimeout = d
}

// Shutdown stops the process gracefully. Safe to call before or after Run.
func (p *Process) Shutdown() {
	p.cancel()
}

// Run starts the subprocess and blocks until it exits, ctx is cancelled,
// Shutdown is called or ffmcast receives SIGINT/SIGTERM.
func (p *Process) Run(ctx context.Context) Result {
	if len(p.args) == 0 {
		p.logger.Error("Empty command")
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Err: errors.New("empty command")}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, p.signals...)
	defer signal.Stop(sigChan)

	processDone, outputDone, err := p.start()
	if err != nil {
		return Result{Outcome: OutcomeFailed, ExitCode: 1, Err: err}
	}
	defer waitOutputDone(outputDone)

	select {
	case <-ctx.Done():
		p.logger.Info("Context cancelled, stopping process")
		return p.stop(processDone)
	case <-p.ctx.Done():
		p.logger.Info("Shutdown requested, stopping process")
		return p.stop(processDone)
	case sig := <-sigChan:
		p.logger.Info("Received shutdown signal", "signal", sig.String())
		return p.stop(processDone)
	case processErr := <-processDone:
		return p.exited(processErr)
	}
}

// start spawns the subprocess and returns channels for its exit and for
// completion of both output streams.
func (p *Process) start() (<-chan error, <-chan struct{}, error) {
	cmd := exec.Command(p.args[0], p.args[1:]...)
	// Own process group, so a terminal ^C reaches ffmcast only and the child
	// is stopped through stop().
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.logger.Error("Failed to create stdout pipe", "error", err)
		return nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		p.logger.Error("Failed to create stderr pipe", "error", err)
		return nil, nil, err
	}

	if err := cmd.Start(); err != nil {
		p.logger.Error("Failed to start process", "error", err, "binary", p.args[0])
		return nil, nil, fmt.Errorf("start %s: %w", p.args[0], err)
	}

	p.cmdMu.Lock()
	p.cmd = cmd
	p.cmdMu.Unlock()

	p.logger.Info("Process started", "id", p.id, "pid", cmd.Process.Pid)

	outputDone := make(chan struct{}, 2)
	go func() {
		p.streamOutput(stdout, "stdout")
		outputDone <- struct{}{}
	}()
	go func() {
		p.streamOutput(stderr, "stderr")
		outputDone <- struct{}{}
	}()

	processDone := make(chan error, 1)
	go func() {
		processDone <- cmd.Wait()
	}()

	return processDone, outputDone, nil
}

func waitOutputDone(outputDone <-chan struct{}) {
	<-outputDone
	<-outputDone
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

func (p *Process) exited(processErr error) Result {
	exitCode := exitCodeFromError(processErr)
	p.logger.Info("Process exited", "exit_code", exitCode)
	if exitCode == 0 {
		return Result{Outcome: OutcomeSuccess}
	}
	return Result{Outcome: OutcomeFailed, ExitCode: exitCode, Err: processErr}
}

// stop sends SIGINT and waits for the child, force-killing after the
// graceful timeout. The run always counts as cancelled.
func (p *Process) stop(processDone <-chan error) Result {
	p.sendStopSignal()
	return Result{Outcome: OutcomeCancelled, ExitCode: p.waitForExit(processDone)}
}

// sendStopSignal sends SIGINT to the subprocess without waiting.
func (p *Process) sendStopSignal() {
	p.cmdMu.Lock()
	cmd := p.cmd
	p.cmdMu.Unlock()
	if cmd == nil || cmd.Process == nil {
		return
	}
	p.logger.Info("Sending SIGINT to process", "pid", cmd.Process.Pid)
	if err := cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGINT", "error", err)
	}
}

// waitForExit waits for the process to exit with a timeout, force-killing if needed.
func (p *Process) waitForExit(processDone <-chan error) int {
	select {
	case err := <-processDone:
		return exitCodeFromError(err)
	case <-time.After(p.gracefulTimeout):
		p.logger.Warn("Graceful shutdown timeout, forcing kill", "timeout", p.gracefulTimeout)
		// The child leads its own process group; kill the whole group so
		// grandchildren do not keep the output pipes open.
		if err := syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
			p.logger.Error("Failed to kill process", "error", err)
		}
		select {
		case <-processDone:
		case <-time.After(p.killTimeout):
			p.logger.Error("Process did not exit after kill signal")
		}
		return exitCodeKilled
	}
}

// streamOutput forwards subprocess output line by line to the output handler
// and the process logger.
func (p *Process) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(scanLinesOrCR)

	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if p.outputHandler != nil {
			p.outputHandler.HandleLine(source, line)
		}

		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		switch level {
		case "panic", "fatal", "error":
			logger.Error(msg)
		case "warning":
			logger.Warn(msg)
		case "verbose", "debug", "trace":
			logger.Debug(msg)
		default:
			logger.Info(msg)
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading output", "source", source, "error", err)
	}
}

// scanLinesOrCR is bufio.ScanLines that also breaks on a lone '\r', which
// ffmpeg uses to redraw its progress line.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		advance = i + 1
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			advance++
		}
		return advance, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
