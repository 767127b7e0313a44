// midisensed shows the MIDI input devices attached to this host on an 8x8
// pixel matrix and keeps the picture current as devices come and go.
//
// A long-running instance is started with --run (optionally --daemon) and
// controlled from a second invocation: --update sends it SIGHUP to re-scan
// now, --quit sends SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/chase3718/midisensed/internal/control"
	"github.com/chase3718/midisensed/internal/daemon"
	"github.com/chase3718/midisensed/internal/instance"
	"github.com/chase3718/midisensed/internal/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.1"
var version = "1.0.0"

type options struct {
	verbose bool
	daemon  bool
	update  bool
	quit    bool
	run     bool
	watch   bool

	display string
	serial  string
	baud    int
	source  string
	stage   int
}

// pidFinder locates the running instance.
type pidFinder interface {
	Find() (int, error)
}

// app holds the collaborators the dispatcher calls so tests can swap them.
type app struct {
	finder  pidFinder
	signal  func(pid int, sig unix.Signal) error
	detach  func(stage int, logger *slog.Logger) (final bool, err error)
	exit    func(code int)
	monitor func(ctx context.Context, o *options, logger *slog.Logger) error
}

func newApp() *app {
	return &app{
		finder: instance.NewFinder(),
		signal: instance.Signal,
		detach: func(stage int, logger *slog.Logger) (bool, error) {
			return daemon.New(stage, os.Args[1:], logger).Detach()
		},
		exit:    os.Exit,
		monitor: runMonitor,
	}
}

func newRootCmd(a *app) *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:           "midisensed",
		Short:         "Show connected MIDI input devices on an 8x8 LED matrix",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := logging.Init(o.verbose)
			return a.dispatch(cmd.Context(), o, logger)
		},
	}
	cmd.SetVersionTemplate("{{.Name}}, Version {{.Version}}\n")

	f := cmd.Flags()
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log DEBUG and INFO messages")
	f.BoolVarP(&o.daemon, "daemon", "D", false, "run as daemon in background")
	f.BoolVarP(&o.update, "update", "u", false, "make the running instance re-scan devices now")
	f.BoolVar(&o.quit, "quit", false, "stop the running instance")
	f.BoolVar(&o.run, "run", false, "run the monitor loop")
	f.BoolVarP(&o.watch, "watch", "w", false, "re-scan when device nodes change under "+hotplugDir)
	f.StringVar(&o.display, "display", displayTerminal, "display backend: terminal, serial or none")
	f.StringVar(&o.serial, "serial", "/dev/ttyACM0", "serial port of the LED matrix")
	f.IntVar(&o.baud, "baud", 115200, "serial baud rate")
	f.StringVar(&o.source, "source", sourceAconnect, "device source: aconnect or rtmidi")
	f.IntVar(&o.stage, daemon.StageFlag, 0, "internal: daemon detach stage")
	_ = f.MarkHidden(daemon.StageFlag)

	return cmd
}

// dispatch runs exactly one action. Checks happen in this order: update,
// quit, daemon, run; update and quit end the invocation.
func (a *app) dispatch(ctx context.Context, o *options, logger *slog.Logger) error {
	if o.update {
		a.signalRunning(control.RefreshSignal, logger)
		return nil
	}
	if o.quit {
		a.signalRunning(control.StopSignal, logger)
		return nil
	}

	if o.daemon {
		final, err := a.detach(o.stage, logger)
		if err != nil {
			return err
		}
		if !final {
			a.exit(0)
			return nil
		}
	}

	if o.run {
		return a.monitor(ctx, o, logger)
	}
	logger.Debug("nothing to do; pass --run to start the monitor")
	return nil
}

// signalRunning sends sig to the running instance. Failures are logged and
// never change the exit status.
func (a *app) signalRunning(sig unix.Signal, logger *slog.Logger) {
	pid, err := a.finder.Find()
	if err != nil {
		logger.Error("Run process not running.", "err", err)
		return
	}
	if err := a.signal(pid, sig); err != nil {
		logger.Error(fmt.Sprintf("Failed to send %s signal.", control.Name(sig)), "pid", pid, "err", err)
		return
	}
	logger.Info("signal sent", "signal", control.Name(sig), "pid", pid)
}

func main() {
	if err := newRootCmd(newApp()).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
