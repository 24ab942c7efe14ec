//go:build unix

package proc

import "os"

// Pipe is an OS pipe whose ends can each be taken exactly once.
type Pipe struct {
	r *os.File
	w *os.File
}

// NewPipe allocates a pipe. Failure is a *SpawnError.
func NewPipe() (*Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Op: "pipe", Err: err}
	}
	return &Pipe{r: r, w: w}, nil
}

// TakeRead returns the read end and gives up ownership of it. Later calls
// return nil.
func (p *Pipe) TakeRead() *os.File {
	f := p.r
	p.r = nil
	return f
}

// TakeWrite returns the write end and gives up ownership of it. Later calls
// return nil.
func (p *Pipe) TakeWrite() *os.File {
	f := p.w
	p.w = nil
	return f
}

// Close closes the ends that have not been taken.
func (p *Pipe) Close() error {
	return Descriptors{Stdin: p.TakeRead(), Stdout: p.TakeWrite()}.Close()
}
