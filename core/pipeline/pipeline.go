// Package pipeline runs a command, or two commands joined by a pipe, as
// child processes.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// PipeToken separates the commands of a pipeline. Only a word exactly equal
// to it counts.
const PipeToken = "|"

var (
	ErrEmptyPipeline     = errors.New("empty command")
	ErrMultiplePipes     = errors.New("cannot have multiple pipes")
	ErrMissingCommand    = errors.New("missing command before pipe")
	ErrMissingPipeTarget = errors.New("must pipe into another command")
)

// SyntaxError is returned when the words don't form a valid pipeline.
type SyntaxError struct {
	// Pos is the index of the offending word.
	Pos int
	Err error
}

func (e *SyntaxError) Error() string {
	return "syntax error: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// NotExecutableError is returned when a command can't be resolved to an
// executable file.
type NotExecutableError struct {
	Name string
	Err  error
}

func (e *NotExecutableError) Error() string {
	return fmt.Sprintf("'%s' cannot be executed", e.Name)
}

func (e *NotExecutableError) Unwrap() error { return e.Err }

// Command is a program name and its arguments as typed.
type Command struct {
	Name string
	Args []string
}

// Argv returns the argument vector, with the name as element zero.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Stage is a command resolved to an executable for a single run.
type Stage struct {
	Command
	Path string
}

// Word is one word of a command line.
type Word struct {
	Text string
	// Literal words are arguments even when their text is the pipe token,
	// such as a quoted '|'.
	Literal bool
}

func (w Word) isPipe() bool {
	return !w.Literal && w.Text == PipeToken
}

// Words wraps texts as words that may be operators.
func Words(texts ...string) []Word {
	out := make([]Word, len(texts))
	for i, text := range texts {
		out[i] = Word{Text: text}
	}
	return out
}

// Texts returns the text of each word.
func Texts(words []Word) []string {
	out := make([]string, len(words))
	for i, word := range words {
		out[i] = word.Text
	}
	return out
}

// Parse splits words on the pipe token into one or two commands. The
// returned commands never share storage with words.
func Parse(words []string) ([]Command, error) {
	return ParseWords(Words(words...))
}

// ParseWords is Parse for words that may be literal.
func ParseWords(words []Word) ([]Command, error) {
	if len(words) == 0 {
		return nil, &SyntaxError{Err: ErrEmptyPipeline}
	}

	split := -1
	for i, word := range words {
		if !word.isPipe() {
			continue
		}

		switch {
		case i == 0:
			return nil, &SyntaxError{Pos: i, Err: ErrMissingCommand}
		case split != -1:
			return nil, &SyntaxError{Pos: i, Err: ErrMultiplePipes}
		case i == len(words)-1:
			return nil, &SyntaxError{Pos: i, Err: ErrMissingPipeTarget}
		}
		split = i
	}

	if split == -1 {
		return []Command{newCommand(words)}, nil
	}
	return []Command{newCommand(words[:split]), newCommand(words[split+1:])}, nil
}

func newCommand(words []Word) Command {
	return Command{Name: words[0].Text, Args: Texts(words[1:])}
}

// Status classifies the outcome of a run.
type Status int

const (
	// StatusOK means every stage ran and exited zero.
	StatusOK Status = iota
	// StatusCommandFailed means every stage was attempted but at least one
	// exited non-zero or could not load its program. A non-zero exit counts
	// as a failure even when every stage was created and wired.
	StatusCommandFailed
	// StatusNotExecutable means a command didn't resolve, nothing ran.
	StatusNotExecutable
	// StatusSyntaxError means the words weren't a valid pipeline, nothing ran.
	StatusSyntaxError
)

var statusNames = map[Status]string{
	StatusOK:            "ok",
	StatusCommandFailed: "command_failed",
	StatusNotExecutable: "not_executable",
	StatusSyntaxError:   "syntax_error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// StageResult records what happened to one stage.
type StageResult struct {
	Stage
	// Pid is zero if the stage was never started.
	Pid      int
	ExitCode int
	// Err is set when the stage could not load its program or couldn't be
	// reaped.
	Err error
}

// Result is the outcome of running a pipeline.
type Result struct {
	Status Status
	// ExitCode is the exit code of the last stage.
	ExitCode int
	Stages   []StageResult
}

// Paths lists the resolved executable of each stage.
func (r *Result) Paths() []string {
	var out []string
	for _, s := range r.Stages {
		out = append(out, s.Path)
	}
	return out
}
