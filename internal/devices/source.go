// Package devices enumerates connected MIDI input devices and tracks which of
// them the monitor currently knows about.
package devices

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ErrEnumerate wraps every failure to list devices.
var ErrEnumerate = errors.New("devices: enumeration failed")

// ExcludedPatterns names virtual/system ports the driver source drops.
var ExcludedPatterns = []string{"Midi Through", "Through Port", "Dummy"}

// AconnectExcluded names the aconnect clients that never count as devices.
// Only the kernel loopback client is dropped there.
var AconnectExcluded = []string{"Midi Through"}

// Source lists the names of the MIDI input devices connected right now.
type Source interface {
	List(ctx context.Context) ([]string, error)
}

// -------------------- aconnect --------------------

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// AconnectSource lists ALSA sequencer input clients via `aconnect -i -l`.
type AconnectSource struct {
	Command string
	Args    []string
	Run     Runner
}

// NewAconnectSource returns a source running the system aconnect.
func NewAconnectSource() *AconnectSource {
	return &AconnectSource{
		Command: "aconnect",
		Args:    []string{"-i", "-l"},
		Run:     execRunner,
	}
}

func (s *AconnectSource) List(ctx context.Context) ([]string, error) {
	run := s.Run
	if run == nil {
		run = execRunner
	}
	out, err := run(ctx, s.Command, s.Args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrEnumerate, s.Command, strings.Join(s.Args, " "), err)
	}
	return ParseAconnect(out), nil
}

var clientLine = regexp.MustCompile(`^client (\d+):.*?'(.*)'`)

// ParseAconnect extracts client names from aconnect output. Only client
// header lines are considered; the system client 0 and loopback ports are
// skipped. The name runs from the first to the last single quote.
func ParseAconnect(out []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		m := clientLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n == 0 {
			continue
		}
		if excluded(m[2], AconnectExcluded) {
			continue
		}
		names = append(names, m[2])
	}
	return names
}

// -------------------- utility --------------------

func excluded(name string, patterns []string) bool {
	for _, pat := range patterns {
		if containsCI(name, pat) {
			return true
		}
	}
	return false
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
