// Package monitor runs the main loop: enumerate devices, reconcile them
// against the known set and redraw the matrix when the set changed.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/chase3718/midisensed/internal/control"
	"github.com/chase3718/midisensed/internal/devices"
	"github.com/chase3718/midisensed/internal/display"
	"github.com/chase3718/midisensed/internal/logging"
	"github.com/chase3718/midisensed/internal/textgrid"
)

// Tunables.
const (
	DefaultTick         = time.Second
	DefaultRefreshTicks = 60
)

// FarewellColor is the color of the shutdown message.
var FarewellColor = display.Red

// Config controls loop timing.
type Config struct {
	// Tick is the sleep between iterations.
	Tick time.Duration
	// RefreshTicks forces an enumeration every this many ticks.
	RefreshTicks int
}

// DefaultConfig returns a one-second tick with a refresh every minute.
func DefaultConfig() Config {
	return Config{Tick: DefaultTick, RefreshTicks: DefaultRefreshTicks}
}

// Monitor owns the known device set and the renderer. Only Run touches
// them; other goroutines talk to it through control.Flags.
type Monitor struct {
	cfg      Config
	source   devices.Source
	tracker  *devices.Tracker
	renderer *textgrid.Renderer
	disp     display.Display
	flags    *control.Flags
	logger   *slog.Logger
}

// New wires a monitor. Zero Config fields take their defaults.
func New(cfg Config, src devices.Source, d display.Display, flags *control.Flags, logger *slog.Logger) *Monitor {
	if cfg.Tick <= 0 {
		cfg.Tick = DefaultTick
	}
	if cfg.RefreshTicks <= 0 {
		cfg.RefreshTicks = DefaultRefreshTicks
	}
	logger = logging.OrDefault(logger)
	return &Monitor{
		cfg:      cfg,
		source:   src,
		tracker:  devices.NewTracker(d, logger),
		renderer: textgrid.NewRenderer(d),
		disp:     d,
		flags:    flags,
		logger:   logger,
	}
}

// Known returns the current known device set. Call it only while Run is not
// executing, or from Run's goroutine.
func (m *Monitor) Known() []string {
	return m.tracker.Known()
}

// Run loops until the flags are stopped or ctx is done, then clears the
// display and shows a farewell. The first iteration always enumerates and
// draws.
func (m *Monitor) Run(ctx context.Context) error {
	pending := true // update-now starts set
	dirty := true   // first screen is always drawn
	ticks := 0

	for !m.flags.Done() {
		if ticks >= m.cfg.RefreshTicks {
			m.logger.Info("Triggering update on timer")
			pending = true
			ticks = 0
		}

		if m.flags.TakeUpdate() {
			m.logger.Info("Triggering update on request")
			pending = true
		}

		if pending {
			pending = false
			m.logger.Info("Updating")
			if m.update(ctx) {
				dirty = true
			}
		}

		if dirty {
			dirty = false
			m.renderer.DrawDeviceScreen(m.tracker.Known())
		}

		if m.sleep(ctx) {
			ticks++
		}
	}

	m.logger.Info("Quitting...")
	m.shutdown()
	return nil
}

// update enumerates and reconciles. A failed enumeration leaves the known
// set untouched; the next scheduled refresh retries.
func (m *Monitor) update(ctx context.Context) bool {
	names, err := m.source.List(ctx)
	if err != nil {
		m.logger.Error("monitor: enumeration failed, keeping known devices", "err", err)
		return false
	}
	_, changed := m.tracker.Reconcile(names)
	return changed
}

// sleep waits one tick. A stop or refresh cuts it short; only a full tick
// reports true and counts towards the periodic refresh.
func (m *Monitor) sleep(ctx context.Context) bool {
	t := time.NewTimer(m.cfg.Tick)
	defer t.Stop()
	select {
	case <-ctx.Done():
		m.flags.Stop()
		return false
	case <-m.flags.Wake():
		return false
	case <-t.C:
		return true
	}
}

func (m *Monitor) shutdown() {
	m.renderer.ClearScreen()
	if f, ok := m.disp.(display.Flusher); ok {
		f.Flush()
	}
	m.logger.Info("Good Bye!")
	m.disp.ShowMessage("Bye", FarewellColor)
}
