package display

import (
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode/utf8"

	"go.bug.st/serial"

	"github.com/chase3718/midisensed/internal/logging"
)

// Serial drives a microcontroller-hosted LED matrix over a serial link using
// the framed command protocol in frame.go.
type Serial struct {
	port   io.WriteCloser
	logger *slog.Logger

	// pace blocks for the duration of a scrolling message.
	pace func(time.Duration)
}

// OpenSerial opens the named serial device at the given baud rate.
func OpenSerial(name string, baud int, logger *slog.Logger) (*Serial, error) {
	logger = logging.OrDefault(logger)
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s at %d baud: %w", name, baud, err)
	}
	logger.Info("serial: port opened", "device", name, "baud", baud)
	return NewSerial(p, logger), nil
}

// NewSerial wraps an already open link.
func NewSerial(port io.WriteCloser, logger *slog.Logger) *Serial {
	return &Serial{
		port:   port,
		logger: logging.OrDefault(logger),
		pace:   time.Sleep,
	}
}

func (s *Serial) SetPixel(x, y int, c Color) {
	if !InBounds(x, y) {
		s.logger.Warn("serial: pixel out of range", "x", x, "y", y)
		return
	}
	s.send(setPixelFrame(x, y, c))
}

func (s *Serial) Clear(c Color) {
	s.send(clearFrame(c))
}

// ShowMessage hands the text to the controller, which scrolls it on its own,
// then waits roughly as long as the scroll takes so that following pixel
// writes do not land mid-message.
func (s *Serial) ShowMessage(text string, c Color) {
	s.send(scrollFrame(text, c, ScrollSpeed))
	s.pace(ScrollDuration(text))
}

// Flush latches the back buffer after a redraw.
func (s *Serial) Flush() {
	s.send(showFrame())
}

// Close closes the underlying serial port.
func (s *Serial) Close() error {
	s.logger.Info("serial: closing port")
	return s.port.Close()
}

func (s *Serial) send(f Frame) {
	data := f.Encode()
	n, err := s.port.Write(data)
	if err != nil {
		s.logger.Error("serial: write error", "cmd", f.Cmd, "err", err)
		return
	}
	s.logger.Debug("serial: frame sent", "cmd", f.Cmd, "bytes", n)
}

// ScrollDuration estimates how long text takes to scroll past: every glyph
// occupies one matrix width, plus one width to clear the last glyph.
func ScrollDuration(text string) time.Duration {
	cols := (utf8.RuneCountInString(text) + 1) * Size
	return time.Duration(cols*ScrollSpeed) * time.Millisecond
}
