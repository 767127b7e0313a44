package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chase3718/midisensed/internal/control"
	"github.com/chase3718/midisensed/internal/devices"
	"github.com/chase3718/midisensed/internal/display"
	"github.com/chase3718/midisensed/internal/hotplug"
	"github.com/chase3718/midisensed/internal/monitor"
)

const (
	displayTerminal = "terminal"
	displaySerial   = "serial"
	displayNone     = "none"

	sourceAconnect = "aconnect"
	sourceRtmidi   = "rtmidi"

	hotplugDir = hotplug.DefaultDir
)

// runMonitor opens the display and device source, installs the control
// signals and blocks in the monitor loop.
func runMonitor(ctx context.Context, o *options, logger *slog.Logger) error {
	disp, closeDisp, err := openDisplay(o, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer closeDisp()

	src, closeSrc, err := openSource(o.source, logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	flags := control.NewFlags()
	uninstall := control.Install(flags)
	defer uninstall()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.watch {
		w, err := hotplug.New(hotplugDir, flags, logger)
		if err != nil {
			logger.Warn("hotplug: disabled", "err", err)
		} else {
			defer w.Close()
			go w.Run(ctx)
		}
	}

	logger.Info("midisensed starting",
		"version", version,
		"pid", os.Getpid(),
		"display", o.display,
		"source", o.source,
		"watch", o.watch,
	)
	return monitor.New(monitor.DefaultConfig(), src, disp, flags, logger).Run(ctx)
}

func openDisplay(o *options, out io.Writer, logger *slog.Logger) (display.Display, func(), error) {
	switch o.display {
	case displayTerminal:
		return display.NewTerminal(out), func() {}, nil
	case displaySerial:
		s, err := display.OpenSerial(o.serial, o.baud, logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("serial: close failed", "err", err)
			}
		}, nil
	case displayNone:
		return display.Discard{}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown display %q", o.display)
}

func openSource(kind string, logger *slog.Logger) (devices.Source, func(), error) {
	switch kind {
	case sourceAconnect:
		return devices.NewAconnectSource(), func() {}, nil
	case sourceRtmidi:
		s, err := devices.NewDriverSource(logger)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				logger.Error("midi: driver close failed", "err", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown device source %q", kind)
}
