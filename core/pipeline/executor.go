//go:build unix

package pipeline

import (
	"errors"
	"fmt"

	"github.com/josephlewis42/pipesh/core/proc"
)

// Resolver turns a command name into the path of an executable.
type Resolver interface {
	Resolve(env proc.Env, command string) (string, error)
}

// Launcher starts a child process. It takes ownership of the descriptors it
// is given.
type Launcher interface {
	Spawn(path string, argv []string, env proc.Env, fds proc.Descriptors) (proc.Child, error)
}

// Executor runs pipelines of at most two commands.
type Executor struct {
	resolver Resolver
	launcher Launcher
}

// NewExecutor creates an executor that resolves commands with resolver and
// starts them with launcher.
func NewExecutor(resolver Resolver, launcher Launcher) *Executor {
	return &Executor{
		resolver: resolver,
		launcher: launcher,
	}
}

// Run parses words as a pipeline, starts every stage, and waits for all of
// them.
//
// A *SyntaxError or *NotExecutableError is returned with a Result when
// nothing could be started. A *proc.SpawnError is fatal, it's returned after
// every child that did start has been reaped.
func (e *Executor) Run(env proc.Env, words []string) (*Result, error) {
	return e.RunWords(env, Words(words...))
}

// RunWords is Run for words that may be literal.
func (e *Executor) RunWords(env proc.Env, words []Word) (*Result, error) {
	commands, err := ParseWords(words)
	if err != nil {
		return &Result{Status: StatusSyntaxError, ExitCode: 2}, err
	}

	stages, err := e.resolve(env, commands)
	if err != nil {
		return &Result{Status: StatusNotExecutable, ExitCode: 127}, err
	}

	fds, err := plumb(len(stages))
	if err != nil {
		return &Result{Status: StatusCommandFailed, ExitCode: 1}, err
	}

	result := &Result{Stages: make([]StageResult, len(stages))}
	children := make([]proc.Child, len(stages))
	for i, stage := range stages {
		result.Stages[i].Stage = stage
	}

	var fatal error
	for i, stage := range stages {
		res := &result.Stages[i]
		child, err := e.launcher.Spawn(stage.Path, stage.Argv(), env, fds[i])
		fds[i] = proc.Descriptors{}

		var imageErr *proc.ImageLoadError
		switch {
		case err == nil:
			res.Pid = child.Pid()
			children[i] = child
			continue
		case errors.As(err, &imageErr):
			res.Err = err
			res.ExitCode = imageErr.ExitStatus()
			continue
		}

		fatal = err
		for _, unused := range fds[i+1:] {
			unused.Close()
		}
		break
	}

	for i, child := range children {
		if child == nil {
			continue
		}
		code, err := child.Wait()
		if err != nil {
			result.Stages[i].Err = fmt.Errorf("wait for %s: %w", result.Stages[i].Name, err)
			code = 1
		}
		result.Stages[i].ExitCode = code
	}

	result.ExitCode = result.Stages[len(stages)-1].ExitCode
	result.Status = StatusOK
	for _, stage := range result.Stages {
		if stage.ExitCode != 0 || stage.Err != nil {
			result.Status = StatusCommandFailed
		}
	}
	if fatal != nil {
		result.Status = StatusCommandFailed
		return result, fatal
	}
	return result, nil
}

func (e *Executor) resolve(env proc.Env, commands []Command) ([]Stage, error) {
	stages := make([]Stage, len(commands))
	for i, cmd := range commands {
		path, err := e.resolver.Resolve(env, cmd.Name)
		if err != nil {
			return nil, &NotExecutableError{Name: cmd.Name, Err: err}
		}
		stages[i] = Stage{Command: cmd, Path: path}
	}
	return stages, nil
}

// plumb returns the descriptors for each stage. The first stage writes into
// the pipe and the second reads from it; the outer ends are inherited.
func plumb(stages int) ([]proc.Descriptors, error) {
	fds := make([]proc.Descriptors, stages)
	if stages < 2 {
		return fds, nil
	}

	pipe, err := proc.NewPipe()
	if err != nil {
		return nil, err
	}
	fds[0].Stdout = pipe.TakeWrite()
	fds[1].Stdin = pipe.TakeRead()
	return fds, nil
}
