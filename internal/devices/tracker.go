package devices

import (
	"log/slog"

	"github.com/chase3718/midisensed/internal/display"
	"github.com/chase3718/midisensed/internal/logging"
)

var (
	AddedColor   = display.Green
	RemovedColor = display.Red
)

// Tracker holds the known device set in discovery order. Each addition or
// removal is announced by scrolling the device name on the display.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	known  []string
	disp   display.Display
	logger *slog.Logger
}

// NewTracker returns a tracker with an empty known set. A nil display
// disables announcements.
func NewTracker(d display.Display, logger *slog.Logger) *Tracker {
	if d == nil {
		d = display.Discard{}
	}
	return &Tracker{disp: d, logger: logging.OrDefault(logger)}
}

// Known returns a copy of the known set.
func (t *Tracker) Known() []string {
	return append([]string(nil), t.known...)
}

// Reconcile diffs current against the known set. New names are appended in
// the order they appear in current; names missing from current are removed
// without reordering the rest. changed reports whether anything moved.
func (t *Tracker) Reconcile(current []string) (known []string, changed bool) {
	present := make(map[string]bool, len(current))
	for _, name := range current {
		present[name] = true
	}
	had := make(map[string]bool, len(t.known))
	for _, name := range t.known {
		had[name] = true
	}

	for _, name := range current {
		if had[name] {
			continue
		}
		had[name] = true
		t.known = append(t.known, name)
		t.logger.Info("added "+name, "device", name)
		t.disp.ShowMessage(name, AddedColor)
		changed = true
	}

	survivors := t.known[:0]
	for _, name := range t.known {
		if present[name] {
			survivors = append(survivors, name)
			continue
		}
		t.logger.Info("removed "+name, "device", name)
		t.disp.ShowMessage(name, RemovedColor)
		changed = true
	}
	t.known = survivors

	return t.Known(), changed
}
