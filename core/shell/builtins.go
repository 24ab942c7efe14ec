//go:build unix

package shell

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	getopt "github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command run inside the interpreter rather than as a child.
type Builtin interface {
	Main(s *Shell, args []string) int
}

type BuiltinFunc func(s *Shell, args []string) int

func (f BuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames lists the registered builtins in order.
func BuiltinNames() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// SimpleCommand parses the flags of a builtin and prints its help.
type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

// Flags gets the command's flag set.
func (c *SimpleCommand) Flags() *getopt.Set {
	if c.flags == nil {
		c.flags = getopt.New()
	}

	return c.flags
}

// PrintHelp writes help for the command to the given writer.
func (c *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, c.Use)
	fmt.Fprintln(w, c.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	c.Flags().PrintOptions(w)
}

// Run parses args and calls the callback if parsing succeeded and help
// wasn't requested.
func (c *SimpleCommand) Run(s *Shell, args []string, callback func() int) int {
	opts := c.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")

	if err := opts.Getopt(args, nil); err != nil {
		s.reportf("%s: %v", args[0], err)
		c.PrintHelp(s.stderr)
		return 2
	}

	if *showHelp {
		c.PrintHelp(s.stdout)
		return 0
	}

	return callback()
}

// Exit ends the interpreter with the given status, or the status of the last
// pipeline when none is given.
func Exit(s *Shell, args []string) int {
	cmd := &SimpleCommand{
		Use:   "exit [N]",
		Short: "Exit the shell with a status of N. If N is omitted, the exit status is that of the last command executed.",
	}

	// getopt reads a negative status as a flag.
	if len(args) == 2 {
		if n, err := strconv.Atoi(args[1]); err == nil {
			s.Quit = true
			return n & 0xff
		}
	}

	return cmd.Run(s, args, func() int {
		status := s.lastStatus
		switch rest := cmd.Flags().Args(); len(rest) {
		case 0:
		case 1:
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				s.reportf("%s: %s: numeric argument required", args[0], rest[0])
				status = 2
				break
			}
			status = n & 0xff
		default:
			s.reportf("%s: too many arguments", args[0])
			return 1
		}

		s.Quit = true
		return status
	})
}

func init() {
	AllBuiltins["exit"] = BuiltinFunc(Exit)
}
