// Package daemon detaches the monitor from its controlling terminal.
//
// A Go process cannot fork safely once the runtime has started threads, so
// the classic double fork is done by re-executing the binary twice. A hidden
// stage argument tells each copy which step it is:
//
//	stage 0  parent: start stage 1 in a new session, exit
//	stage 1  session leader: start stage 2, exit
//	stage 2  not a session leader, so it can never reacquire a terminal;
//	         chdir to WorkDir, reset the umask, continue
//
// Detach must run before any display, signal or device state is set up.
package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/chase3718/midisensed/internal/logging"
)

const (
	// StageFlag is the hidden flag carrying the stage across re-executions.
	StageFlag = "detach-stage"
	// FinalStage is the stage of the long-lived process.
	FinalStage = 2

	// WorkDir is the working directory of the daemon.
	WorkDir = "/"
	// Umask is the file mode creation mask of the daemon.
	Umask = 0
)

// ErrDetach wraps every failure to detach. It is fatal.
var ErrDetach = errors.New("daemon: detach failed")

// Detacher performs one step of the sequence. The function fields default
// to the real system calls and exist so tests can observe each step.
type Detacher struct {
	Stage int
	Args  []string

	Executable func() (string, error)
	Start      func(*exec.Cmd) error
	Chdir      func(string) error
	Umask      func(int) int

	logger *slog.Logger
}

// New returns a Detacher for the given stage and the process arguments
// (without argv[0]).
func New(stage int, args []string, logger *slog.Logger) *Detacher {
	return &Detacher{
		Stage:      stage,
		Args:       args,
		Executable: os.Executable,
		Start:      (*exec.Cmd).Start,
		Chdir:      unix.Chdir,
		Umask:      unix.Umask,
		logger:     logging.OrDefault(logger),
	}
}

// Detach runs this process's step. final is true only in the fully detached
// process; in earlier stages the caller must exit with status 0 right away.
func (d *Detacher) Detach() (final bool, err error) {
	switch {
	case d.Stage <= 0:
		return false, d.respawn(1, true)
	case d.Stage < FinalStage:
		return false, d.respawn(FinalStage, false)
	}

	if err := d.Chdir(WorkDir); err != nil {
		return false, fmt.Errorf("%w: chdir %s: %w", ErrDetach, WorkDir, err)
	}
	d.Umask(Umask)
	d.logger.Debug("daemon: detached", "pid", os.Getpid(), "workdir", WorkDir)
	return true, nil
}

func (d *Detacher) respawn(next int, setsid bool) error {
	exe, err := d.Executable()
	if err != nil {
		return fmt.Errorf("%w: locate executable: %w", ErrDetach, err)
	}
	cmd := exec.Command(exe, WithStage(d.Args, next)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: setsid}
	if err := d.Start(cmd); err != nil {
		return fmt.Errorf("%w: start stage %d: %w", ErrDetach, next, err)
	}
	d.logger.Debug("daemon: stage started", "stage", next, "pid", cmd.Process.Pid, "setsid", setsid)
	return nil
}

// WithStage returns args with any previous stage flag replaced by stage.
func WithStage(args []string, stage int) []string {
	prefix := "--" + StageFlag
	out := make([]string, 0, len(args)+1)
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == prefix {
			i++ // value is the next argument
			continue
		}
		if strings.HasPrefix(a, prefix+"=") {
			continue
		}
		out = append(out, a)
	}
	return append(out, prefix+"="+strconv.Itoa(stage))
}
