package devices

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/midisensed/internal/logging"
)

// DriverSource lists MIDI inputs through a gomidi driver, rtmidi by default.
// Virtual and system ports matching ExcludedPatterns are dropped.
type DriverSource struct {
	mu     sync.Mutex
	drv    drivers.Driver
	logger *slog.Logger
}

// NewDriverSource initialises the rtmidi driver. Call Close when done.
func NewDriverSource(logger *slog.Logger) (*DriverSource, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	return NewDriverSourceWith(drv, logger), nil
}

// NewDriverSourceWith wraps an already initialised driver.
func NewDriverSourceWith(drv drivers.Driver, logger *slog.Logger) *DriverSource {
	return &DriverSource{drv: drv, logger: logging.OrDefault(logger)}
}

func (s *DriverSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumerate, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ins, err := s.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEnumerate, s.drv.String(), err)
	}
	raw := make([]string, 0, len(ins))
	for _, in := range ins {
		raw = append(raw, in.String())
	}
	names := filterPorts(raw, s.logger)
	s.logger.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names, nil
}

// Close shuts down the underlying driver.
func (s *DriverSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drv.Close()
}

// filterPorts drops excluded ports and repeated names, keeping order.
func filterPorts(raw []string, logger *slog.Logger) []string {
	seen := make(map[string]bool, len(raw))
	var names []string
	for _, name := range raw {
		if excluded(name, ExcludedPatterns) {
			logger.Debug("midi: input excluded", "device", name)
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
