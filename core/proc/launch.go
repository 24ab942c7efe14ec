//go:build unix

package proc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// ErrAlreadyReaped is returned by Wait after the child has been reaped.
var ErrAlreadyReaped = errors.New("child already reaped")

// SpawnError indicates the operating system could not create a process or
// pipe at all. The interpreter can't continue after one.
type SpawnError struct {
	Op  string
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ImageLoadError indicates the process could be created but the program
// image could not be loaded into it.
type ImageLoadError struct {
	Path string
	Err  error
}

func (e *ImageLoadError) Error() string {
	var pathErr *fs.PathError
	if errors.As(e.Err, &pathErr) {
		return e.Path + ": " + pathErr.Err.Error()
	}
	return e.Path + ": " + e.Err.Error()
}

func (e *ImageLoadError) Unwrap() error { return e.Err }

// ExitStatus is the status a shell reports for the failed stage.
func (e *ImageLoadError) ExitStatus() int {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return 127
	}
	return 126
}

// Descriptors holds the standard input and output handed to a child. A nil
// field means the launcher's own stream is inherited.
type Descriptors struct {
	Stdin  *os.File
	Stdout *os.File
}

// Close closes every non-nil descriptor.
func (d Descriptors) Close() error {
	var firstErr error
	for _, f := range []*os.File{d.Stdin, d.Stdout} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Child is a spawned process that can be reaped once.
type Child interface {
	Pid() int
	// Wait blocks until the child exits and returns its exit status.
	Wait() (int, error)
}

// Launcher starts child processes wired to its standard streams.
type Launcher struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// NewLauncher creates a launcher that children inherit the given streams from.
func NewLauncher(stdin, stdout, stderr *os.File) *Launcher {
	return &Launcher{Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// Spawn starts the program at path with the given argv and environment.
//
// The launcher owns fds once Spawn is called: every descriptor other than
// the launcher's own streams is closed before Spawn returns, whether or not
// the child started.
func (l *Launcher) Spawn(path string, argv []string, env Env, fds Descriptors) (Child, error) {
	defer l.release(fds)

	stdin, stdout := l.Stdin, l.Stdout
	if fds.Stdin != nil {
		stdin = fds.Stdin
	}
	if fds.Stdout != nil {
		stdout = fds.Stdout
	}

	p, err := os.StartProcess(path, argv, &os.ProcAttr{
		Env:   env.Environ(),
		Files: []*os.File{stdin, stdout, l.Stderr},
	})
	if err != nil {
		return nil, classifyStartError(path, err)
	}

	return &process{proc: p}, nil
}

func (l *Launcher) release(fds Descriptors) {
	if fds.Stdin == l.Stdin {
		fds.Stdin = nil
	}
	if fds.Stdout == l.Stdout {
		fds.Stdout = nil
	}
	fds.Close()
}

func classifyStartError(path string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case unix.EAGAIN, unix.ENOMEM, unix.EMFILE, unix.ENFILE, unix.ENOSYS:
			return &SpawnError{Op: "fork/exec", Err: err}
		}
	}
	return &ImageLoadError{Path: path, Err: err}
}

type process struct {
	proc  *os.Process
	state *os.ProcessState
}

var _ Child = (*process)(nil)

func (p *process) Pid() int {
	return p.proc.Pid
}

func (p *process) Wait() (int, error) {
	if p.state != nil {
		return -1, ErrAlreadyReaped
	}

	state, err := p.proc.Wait()
	if err != nil {
		return -1, err
	}
	p.state = state
	return ExitStatus(state), nil
}

// ExitStatus converts a process state to a shell exit status. Children
// killed by a signal report 128 plus the signal number.
func ExitStatus(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
