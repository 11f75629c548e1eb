// Package cmd wires the ffmcast command line.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/smazurov/ffmcast/internal/cast"
	"github.com/smazurov/ffmcast/internal/config"
	"github.com/smazurov/ffmcast/internal/events"
	"github.com/smazurov/ffmcast/internal/logging"
	"github.com/smazurov/ffmcast/internal/metrics"
	"github.com/smazurov/ffmcast/internal/metrics/exporters"
	"github.com/smazurov/ffmcast/internal/probe"
	"github.com/smazurov/ffmcast/internal/prompt"
	"github.com/smazurov/ffmcast/internal/version"
	"github.com/spf13/cobra"
)

const usage = "Usage: ffmcast [mediafile]"

// app holds state shared by the commands of one invocation.
type app struct {
	opts     config.Options
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	prober   probe.Prober
	runner   cast.Runner
	exitCode int
}

// Execute runs the ffmcast CLI with os.Args and returns the exit code.
func Execute() int {
	a := &app{
		opts:   config.DefaultOptions(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		prober: probe.Probe,
	}
	root := newRootCmd(a)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(a.errOut, "Error:", err)
		if a.exitCode == cast.ExitOK {
			a.exitCode = cast.ExitFailure
		}
	}
	return a.exitCode
}

// newRootCmd creates the root command, which streams one media file.
func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ffmcast [mediafile]",
		Short: "Stream a media file to Icecast with ffmpeg",
		Long: `Probes a media file with ffprobe, asks for quality, seek position and tracks, ` +
			`then streams it to an Icecast mount as Ogg Theora/Vorbis with subtitles burned in.`,
		Version:       version.Get().String(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			if err := config.LoadConfig(&a.opts, c); err != nil {
				return err
			}
			logCfg := a.opts.Logging()
			logCfg.Output = a.errOut
			logging.Initialize(logCfg)
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(a.out, usage)
				a.exitCode = cast.ExitFailure
				return nil
			}
			return a.cast(c, args[0])
		},
	}

	config.RegisterFlags(root.PersistentFlags(), &a.opts)

	root.AddCommand(newProbeCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

func (a *app) cast(c *cobra.Command, file string) error {
	logger := logging.GetLogger("main")

	runner := a.runner
	if runner == nil {
		runner = cast.NewProcessRunner(time.Duration(a.opts.FfmpegStopTimeout) * time.Second)
	}
	m := metrics.New()
	bus := events.New()
	evLog := newSessionLog(bus, logging.GetLogger("events"))
	defer evLog.close()

	session := cast.NewSession(a.opts, prompt.New(a.in, a.out), a.prober, runner,
		cast.WithObserver(m), cast.WithBus(bus))

	code, err := session.Run(c.Context(), file)
	a.exitCode = code
	if session.Executed() && !evLog.wait(eventFlushTimeout) {
		logger.Warn("Session events not logged before exit")
	}

	if a.opts.MetricsTextfile != "" {
		if werr := exporters.WriteTextfile(a.opts.MetricsTextfile, m.Registry()); werr != nil {
			logger.Warn("Failed to write metrics textfile", "error", werr)
		}
	}

	if errors.Is(err, cast.ErrMediaNotFound) {
		fmt.Fprintf(a.out, "File %s does not exist\n", file)
		return nil
	}
	return err
}
