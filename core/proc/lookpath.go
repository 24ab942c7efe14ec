//go:build unix

package proc

import (
	"errors"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// LookupError is returned by Resolve when no executable could be found.
//
// It always matches ErrNotFound with errors.Is, and unwraps to the reason the
// last candidate was rejected.
type LookupError struct {
	Name string
	Err  error
}

func (e *LookupError) Error() string {
	return "exec: " + strconv.Quote(e.Name) + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error { return e.Err }

func (e *LookupError) Is(target error) bool {
	return target == ErrNotFound
}

// Resolver finds executables named by the user.
type Resolver struct {
	// Fs is the filesystem candidates are checked against.
	Fs afero.Fs
}

// NewResolver creates a Resolver backed by the host filesystem.
func NewResolver() *Resolver {
	return &Resolver{Fs: afero.NewOsFs()}
}

func (r *Resolver) findExecutable(file string) error {
	d, err := r.Fs.Stat(file)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return err
	}
	if m := d.Mode(); m.IsDir() || m&0111 == 0 {
		return fs.ErrPermission
	}

	// Mode bits say someone may execute the file, the kernel knows whether
	// we can.
	if _, ok := r.Fs.(*afero.OsFs); ok {
		if err := unix.Access(file, unix.X_OK); err != nil {
			return fs.ErrPermission
		}
	}
	return nil
}

// Resolve searches for an executable named command in the directories named
// by the PATH variable of env. If command contains a slash, it is tried
// directly and PATH is not consulted. Empty PATH elements mean the current
// directory.
//
// Nothing is cached, every call inspects the filesystem again.
func (r *Resolver) Resolve(env Env, command string) (string, error) {
	if command == "" {
		return "", &LookupError{Name: command, Err: ErrNotFound}
	}

	if strings.Contains(command, "/") {
		if err := r.findExecutable(command); err != nil {
			return "", &LookupError{Name: command, Err: err}
		}
		return command, nil
	}

	var lastErr error = ErrNotFound
	for _, dir := range filepath.SplitList(env.Getenv(EnvPath)) {
		if dir == "" {
			dir = "."
		}
		path := filepath.Join(dir, command)
		if !strings.Contains(path, "/") {
			path = "./" + path
		}
		err := r.findExecutable(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, ErrNotFound) {
			lastErr = err
		}
	}
	return "", &LookupError{Name: command, Err: lastErr}
}
