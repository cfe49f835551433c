package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// command is one node of the CLI tree. Leaf commands have run; group
// commands dispatch to subs by their first argument.
type command struct {
	name    string
	summary string
	usage   string
	flags   func(fs *pflag.FlagSet)
	subs    []*command
	run     func(ctx context.Context, fs *pflag.FlagSet, args []string) error
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

func (c *command) execute(ctx context.Context, out io.Writer, parent string, args []string) error {
	path := strings.TrimSpace(parent + " " + c.name)

	if len(c.subs) > 0 {
		if len(args) == 0 {
			c.printHelp(out, path, nil)
			return errors.New("subcommand required")
		}
		if isHelpFlag(args[0]) {
			c.printHelp(out, path, nil)
			return nil
		}
		for _, sub := range c.subs {
			if sub.name == args[0] {
				return sub.execute(ctx, out, path, args[1:])
			}
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], path)
	}

	fs := c.flagSet(path)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			c.printHelp(out, path, fs)
			return nil
		}
		return fmt.Errorf("%w\n\nRun '%s --help' for usage.", err, path)
	}
	return c.run(ctx, fs, fs.Args())
}

func (c *command) flagSet(path string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(path, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	if c.flags != nil {
		c.flags(fs)
	}
	return fs
}

func (c *command) printHelp(out io.Writer, path string, fs *pflag.FlagSet) {
	if c.summary != "" {
		fmt.Fprintf(out, "%s\n\n", c.summary)
	}

	usage := c.usage
	if usage == "" {
		usage = path
		if len(c.subs) > 0 {
			usage += " <command>"
		} else if c.flags != nil {
			usage += " [flags]"
		}
	}
	fmt.Fprintf(out, "Usage:\n  %s\n", usage)

	if len(c.subs) > 0 {
		width := 0
		for _, sub := range c.subs {
			width = max(width, len(sub.name))
		}
		fmt.Fprintf(out, "\nCommands:\n")
		for _, sub := range c.subs {
			fmt.Fprintf(out, "  %-*s  %s\n", width, sub.name, sub.summary)
		}
		fmt.Fprintf(out, "\nRun '%s <command> --help' for details.\n", path)
		return
	}

	if fs == nil {
		fs = c.flagSet(path)
	}
	if usages := fs.FlagUsages(); usages != "" {
		fmt.Fprintf(out, "\nFlags:\n%s", usages)
	}
}
