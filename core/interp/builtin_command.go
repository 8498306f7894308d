package interp

import (
	"fmt"
	"io"

	getopt "github.com/pborman/getopt/v2"
)

// BuiltinCommand handles option parsing and help for built-ins.
type BuiltinCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string

	flags    *getopt.Set
	showHelp *bool
}

// Flags gets the command's flag set.
func (b *BuiltinCommand) Flags() *getopt.Set {
	if b.flags == nil {
		b.flags = getopt.New()
	}

	return b.flags
}

// PrintHelp writes help for the command to the given writer.
func (b *BuiltinCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, b.Use)
	fmt.Fprintln(w, b.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	b.Flags().PrintOptions(w)
}

// Run parses args, args[0] being the command name. If parsing was successful
// and help wasn't requested, callback is called with the remaining arguments.
func (b *BuiltinCommand) Run(stdio Stdio, args []string, callback func(args []string) int) int {
	opts := b.Flags()
	if b.showHelp == nil {
		b.showHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	if err := opts.Getopt(args, nil); err != nil {
		fmt.Fprintf(stdio.Err, "%s: %s\n\n", args[0], err)
		b.PrintHelp(stdio.Err)
		return StatusUsage
	}

	if *b.showHelp {
		b.PrintHelp(stdio.Out)
		return 0
	}

	return callback(opts.Args())
}
