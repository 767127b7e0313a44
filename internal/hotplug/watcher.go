// Package hotplug raises a refresh when MIDI device nodes come and go.
package hotplug

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"

	"github.com/chase3718/midisensed/internal/logging"
)

// DefaultDir holds the ALSA device nodes.
const DefaultDir = "/dev/snd"

// Requester is the part of control.Flags the watcher needs.
type Requester interface {
	RequestUpdate()
}

// Watcher requests an update whenever an entry is created in or removed
// from the watched directory. It only ever sets the latch, so the monitor
// loop still serialises all device work.
type Watcher struct {
	dir     string
	req     Requester
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// New starts watching dir. Call Run to process events and Close when done.
func New(dir string, req Requester, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("hotplug: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("hotplug: watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, req: req, watcher: w, logger: logging.OrDefault(logger)}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) {
				w.logger.Debug("hotplug: device node changed", "path", ev.Name, "op", ev.Op.String())
				w.req.RequestUpdate()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("hotplug: watcher error", "dir", w.dir, "err", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
