//go:build unix

package shell

import (
	"errors"
	"io"
	"log"
	"os"

	"github.com/josephlewis42/pipesh/core/config"
	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/josephlewis42/pipesh/core/pipeline"
	"github.com/josephlewis42/pipesh/core/proc"
)

// Name prefixes every diagnostic.
const Name = "pipesh"

// Options holds the process level resources a Shell runs with.
type Options struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	// Interactive is true when Stdin is a terminal.
	Interactive bool

	// Events records what the shell does, nil discards events.
	Events *logger.SessionLogger

	// Environ returns the environment for each pipeline, os.Environ by
	// default.
	Environ func() []string
}

// Shell reads lines, runs them as pipelines and reports what went wrong.
type Shell struct {
	cfg       *config.Configuration
	opts      Options
	stdout    io.Writer
	stderr    io.Writer
	tokenizer *Tokenizer
	executor  *pipeline.Executor
	diag      *ColorPrinter
	events    *logger.SessionLogger

	lastStatus int

	// Set to true to quit the shell
	Quit bool
}

// New creates a shell that runs commands as children of this process.
func New(cfg *config.Configuration, opts Options) *Shell {
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	if opts.Events == nil {
		opts.Events = logger.Discard().Sessionless()
	}

	return &Shell{
		cfg:    cfg,
		opts:   opts,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		tokenizer: &Tokenizer{
			MaxWords:      cfg.Limits.MaxWords,
			MaxWordLength: cfg.Limits.MaxWordLength,
		},
		executor: pipeline.NewExecutor(
			proc.NewResolver(),
			proc.NewLauncher(opts.Stdin, opts.Stdout, opts.Stderr),
		),
		diag:   NewColorPrinter(opts.Stderr, Name, cfg.Color, opts.Interactive),
		events: opts.Events,
	}
}

// LastStatus is the exit status of the most recent line.
func (s *Shell) LastStatus() int {
	return s.lastStatus
}

// Run reads and runs lines until end of input or exit, and returns the
// status the interpreter should exit with.
func (s *Shell) Run() int {
	reader, err := NewLineReader(LineReaderConfig{
		Stdin:         s.opts.Stdin,
		Stdout:        s.opts.Stdout,
		Stderr:        s.opts.Stderr,
		Interactive:   s.opts.Interactive,
		Echo:          s.cfg.EchoInput,
		MaxLineLength: s.cfg.Limits.MaxLineLength,
		Prompt:        s.prompt,
	})
	if err != nil {
		s.reportf("%v", err)
		return 1
	}
	defer reader.Close()

	for !s.Quit {
		line, err := reader.ReadLine()

		var parseErr *ParseError
		switch {
		case err == io.EOF:
			return s.lastStatus
		case errors.As(err, &parseErr):
			s.invalid(nil, err)
			continue
		case err != nil:
			s.reportf("%v", err)
			return 1
		}

		s.RunLine(line)
	}

	return s.lastStatus
}

// RunLine tokenizes and runs a single line. It returns false once the shell
// should stop.
func (s *Shell) RunLine(line string) bool {
	tokens, err := s.tokenizer.Tokenize(line)
	if err != nil {
		s.invalid([]string{line}, err)
		return !s.Quit
	}
	words := pipeline.Texts(tokens)

	if builtin, ok := AllBuiltins[words[0]]; ok && !containsPipe(tokens) {
		s.lastStatus = builtin.Main(s, words)
		s.record(s.events.Builtin(words, s.lastStatus))
		return !s.Quit
	}

	env := proc.NewEnv(s.opts.Environ())
	result, err := s.executor.RunWords(env, tokens)

	var (
		syntaxErr  *pipeline.SyntaxError
		notExecErr *pipeline.NotExecutableError
		spawnErr   *proc.SpawnError
	)
	switch {
	case errors.As(err, &syntaxErr):
		s.invalid(words, err)
		s.lastStatus = result.ExitCode
		return !s.Quit

	case errors.As(err, &notExecErr):
		s.reportf("%v", err)
		s.record(s.events.UnknownCommand(words, notExecErr.Name, err))
		s.lastStatus = result.ExitCode
		return !s.Quit

	case errors.As(err, &spawnErr):
		s.reportf("%v", err)
		s.record(s.events.SpawnFailure(words, err))
		s.lastStatus = 1
		s.Quit = true
		return false

	case err != nil:
		s.reportf("%v", err)
		s.lastStatus = 1
		return !s.Quit
	}

	for _, stage := range result.Stages {
		if stage.Err != nil {
			s.reportf("%v", stage.Err)
		}
	}
	s.record(s.events.RunCommand(words, result.Paths(), result.Status.String(), result.ExitCode))
	s.lastStatus = result.ExitCode
	return !s.Quit
}

func (s *Shell) invalid(command []string, err error) {
	s.reportf("%v", err)
	s.record(s.events.InvalidInvocation(command, err))
	s.lastStatus = 2
}

func (s *Shell) reportf(format string, a ...interface{}) {
	s.diag.Printf(format, a...)
}

func (s *Shell) record(err error) {
	if err != nil {
		log.Printf("recording event: %v", err)
	}
}

func (s *Shell) prompt() string {
	host, _ := os.Hostname()
	wd, _ := os.Getwd()
	return ExpandPrompt(s.cfg.Prompt, PromptInfo{
		Env:      proc.NewEnv(s.opts.Environ()),
		Hostname: host,
		Wd:       wd,
		Uid:      os.Getuid(),
	})
}

func containsPipe(words []pipeline.Word) bool {
	for _, w := range words {
		if !w.Literal && w.Text == pipeline.PipeToken {
			return true
		}
	}
	return false
}
