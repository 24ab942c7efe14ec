package shell

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/abiosoft/readline"
)

// LineReaderConfig configures a LineReader.
type LineReaderConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when Stdin is a terminal. The prompt is only shown
	// to interactive users.
	Interactive bool
	// Echo writes the prompt and each line to Stdout when not interactive.
	Echo bool
	// MaxLineLength is the longest accepted line in bytes.
	MaxLineLength int
	// Prompt is called before each line is read.
	Prompt func() string
}

// LineReader reads command lines one at a time.
type LineReader struct {
	cfg  LineReaderConfig
	gate *lineGate
	rl   *readline.Instance
}

// NewLineReader creates a readline-backed reader.
func NewLineReader(cfg LineReaderConfig) (*LineReader, error) {
	if cfg.Prompt == nil {
		cfg.Prompt = func() string { return "" }
	}

	gate := newLineGate(cfg.Stdin)
	rlCfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(gate),
		Stdout: cfg.Stdout,
		Stderr: cfg.Stderr,
		FuncIsTerminal: func() bool {
			return cfg.Interactive
		},
	}
	if !cfg.Interactive {
		// Leave the controlling terminal alone when reading a script.
		rlCfg.FuncMakeRaw = func() error { return nil }
		rlCfg.FuncExitRaw = func() error { return nil }
	}

	if err := rlCfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return nil, err
	}

	return &LineReader{
		cfg:  cfg,
		gate: gate,
		rl:   rl,
	}, nil
}

// ReadLine returns the next non-empty line without its terminator.
//
// It returns io.EOF at the end of input and a *ParseError for lines that are
// too long or hold nothing but whitespace. An interrupt discards the line
// being edited and starts a new one.
func (r *LineReader) ReadLine() (string, error) {
	for {
		prompt := r.cfg.Prompt()
		r.rl.SetPrompt(prompt)

		r.gate.open()
		line, err := r.rl.Readline()
		r.gate.close()

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case err != nil:
			return "", err
		case len(line) == 0:
			continue
		}

		if r.cfg.Echo && !r.cfg.Interactive {
			fmt.Fprintf(r.cfg.Stdout, "%s%s\n", prompt, line)
		}

		if r.cfg.MaxLineLength > 0 && len(line) > r.cfg.MaxLineLength {
			return "", &ParseError{Kind: ErrLineTooLong, Detail: fmt.Sprintf("%d bytes, limit is %d", len(line), r.cfg.MaxLineLength)}
		}
		if strings.TrimSpace(line) == "" {
			return "", &ParseError{Kind: ErrBlankLine}
		}
		return line, nil
	}
}

// Close releases the terminal.
func (r *LineReader) Close() error {
	return r.rl.Close()
}

// lineGate lets bytes through from the underlying reader only while a line
// is being read, one byte per Read, and shuts after a line terminator. Input
// after the current line stays unread for child processes sharing stdin.
type lineGate struct {
	r io.Reader

	mu     sync.Mutex
	cond   *sync.Cond
	opened bool
}

func newLineGate(r io.Reader) *lineGate {
	g := &lineGate{r: r}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *lineGate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened = true
	g.cond.Broadcast()
}

func (g *lineGate) close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened = false
}

func (g *lineGate) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	g.mu.Lock()
	for !g.opened {
		g.cond.Wait()
	}
	g.mu.Unlock()

	n, err := g.r.Read(p[:1])
	if n == 1 && (p[0] == '\n' || p[0] == '\r') {
		g.close()
	}
	return n, err
}

var _ io.Reader = (*lineGate)(nil)
