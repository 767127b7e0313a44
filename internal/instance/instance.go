// Package instance finds the long-running monitor process and signals it.
package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/sys/unix"
)

// RunMarker is the argument that identifies the long-running instance.
const RunMarker = "--run"

var (
	// ErrNotRunning means no process matched.
	ErrNotRunning = errors.New("instance: run process not running")
	// ErrNoPID means a signal was requested without a target.
	ErrNoPID = errors.New("instance: no PID provided")
)

// Proc is one entry of the process table.
type Proc struct {
	PID  int
	Argv []string
}

// Lister returns a snapshot of the process table.
type Lister func(ctx context.Context) ([]Proc, error)

// SystemProcesses lists every process visible to the caller. Processes that
// exit or hide their command line mid-scan are skipped.
func SystemProcesses(ctx context.Context) ([]Proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("instance: list processes: %w", err)
	}
	out := make([]Proc, 0, len(ps))
	for _, p := range ps {
		argv, err := p.CmdlineSliceWithContext(ctx)
		if err != nil || len(argv) == 0 {
			continue
		}
		out = append(out, Proc{PID: int(p.Pid), Argv: argv})
	}
	return out, nil
}

// Finder scans the process table for the running instance.
type Finder struct {
	// List is normally SystemProcesses.
	List Lister
	// Program is the argv[0] basename to match.
	Program string
	// Marker must appear as a separate argument.
	Marker string
	// Self is excluded from the scan.
	Self int
}

// NewFinder returns a Finder for this program's run instance.
func NewFinder() *Finder {
	return &Finder{
		List:    SystemProcesses,
		Program: filepath.Base(os.Args[0]),
		Marker:  RunMarker,
		Self:    os.Getpid(),
	}
}

// Find returns the lowest matching PID, or ErrNotRunning.
func (f *Finder) Find() (int, error) {
	return f.FindContext(context.Background())
}

// FindContext is Find with a context for the process-table scan.
func (f *Finder) FindContext(ctx context.Context) (int, error) {
	procs, err := f.List(ctx)
	if err != nil {
		return 0, err
	}

	var pids []int
	for _, p := range procs {
		if p.PID == f.Self {
			continue
		}
		if f.matches(p.Argv) {
			pids = append(pids, p.PID)
		}
	}
	if len(pids) == 0 {
		return 0, ErrNotRunning
	}
	sort.Ints(pids)
	return pids[0], nil
}

func (f *Finder) matches(argv []string) bool {
	if len(argv) == 0 || filepath.Base(argv[0]) != f.Program {
		return false
	}
	for _, a := range argv[1:] {
		if a == f.Marker {
			return true
		}
	}
	return false
}

// Signal delivers sig to pid. Delivery is fire-and-forget: success only
// means the kernel accepted the signal.
func Signal(pid int, sig unix.Signal) error {
	if pid <= 0 {
		return ErrNoPID
	}
	if err := unix.Kill(pid, sig); err != nil {
		return fmt.Errorf("instance: send %s to %d: %w", unix.SignalName(sig), pid, err)
	}
	return nil
}
