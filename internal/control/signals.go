package control

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Signals used as the two control messages.
const (
	RefreshSignal = unix.SIGHUP
	StopSignal    = unix.SIGTERM
)

// stopSignals all mean STOP to a running instance.
var stopSignals = []os.Signal{unix.SIGINT, unix.SIGTERM}

// Install routes SIGINT/SIGTERM to f.Stop and SIGHUP to f.RequestUpdate.
// The returned function restores default handling.
func Install(f *Flags) (uninstall func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, append(stopSignals, RefreshSignal)...)

	quit := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				Dispatch(f, sig)
			case <-quit:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(quit)
	}
}

// Dispatch applies one received signal to f. Unknown signals are ignored.
func Dispatch(f *Flags, sig os.Signal) {
	if sig == RefreshSignal {
		f.RequestUpdate()
		return
	}
	for _, s := range stopSignals {
		if sig == s {
			f.Stop()
			return
		}
	}
}

// Name returns the short signal name used in logs, e.g. "HUP".
func Name(sig unix.Signal) string {
	n := unix.SignalName(sig)
	if len(n) > 3 && n[:3] == "SIG" {
		return n[3:]
	}
	return n
}
