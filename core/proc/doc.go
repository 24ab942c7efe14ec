// Package proc finds executables on PATH and starts them as child processes
// wired to explicit standard streams.
package proc
