// Package shell provides the interactive reminder prompt.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-shellwords"
	"github.com/notexe/reminder-cli/internal/ui"
)

// Executor runs one CLI command line, already split into arguments.
type Executor interface {
	Execute(ctx context.Context, args []string) error
}

// Commands offered for tab completion.
var completer = readline.NewPrefixCompleter(
	readline.PcItem("add"),
	readline.PcItem("list"),
	readline.PcItem("show"),
	readline.PcItem("edit"),
	readline.PcItem("delete"),
	readline.PcItem("pause"),
	readline.PcItem("resume"),
	readline.PcItem("clean"),
	readline.PcItem("tags"),
	readline.PcItem("export"),
	readline.PcItem("import"),
	readline.PcItem("daemon",
		readline.PcItem("start"),
		readline.PcItem("stop"),
		readline.PcItem("status"),
		readline.PcItem("install"),
	),
	readline.PcItem("logs",
		readline.PcItem("show"),
		readline.PcItem("info"),
		readline.PcItem("clear"),
	),
	readline.PcItem("version"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
)

type Shell struct {
	executor  Executor
	formatter *ui.Formatter
	rl        *readline.Instance
	out       io.Writer
	version   string
}

// New prepares a shell that keeps its history in historyFile.
func New(executor Executor, formatter *ui.Formatter, historyFile, version string) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              formatter.FormatPrompt(),
		HistoryFile:         historyFile,
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &Shell{
		executor:  executor,
		formatter: formatter,
		rl:        rl,
		out:       rl.Stdout(),
		version:   version,
	}, nil
}

// Run reads and executes lines until exit, EOF or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	defer s.rl.Close()

	fmt.Fprintln(s.out, s.formatter.FormatWelcome(s.version))

	for ctx.Err() == nil {
		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					fmt.Fprintln(s.out, "Goodbye!")
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "Goodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if s.handle(ctx, line) {
			return nil
		}
	}
	return nil
}

// handle executes one input line and reports whether the shell should
// exit. Errors are printed, never returned.
func (s *Shell) handle(ctx context.Context, line string) bool {
	args, err := Split(line)
	if err != nil {
		fmt.Fprintln(s.out, s.formatter.FormatError(err))
		return false
	}
	if len(args) == 0 {
		return false
	}

	switch strings.ToLower(args[0]) {
	case "exit", "quit", "q":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case "help", "h", "?":
		fmt.Fprintln(s.out, s.formatter.FormatShellHelp())
		return false
	case "shell":
		fmt.Fprintln(s.out, s.formatter.FormatInfo("Already in the shell."))
		return false
	}
	if len(args) >= 2 && args[0] == "daemon" && args[1] == "run" {
		fmt.Fprintln(s.out, s.formatter.FormatInfo("Use 'daemon start' to run the daemon in the background."))
		return false
	}

	if err := s.executor.Execute(ctx, args); err != nil {
		fmt.Fprintln(s.out, s.formatter.FormatError(err))
	}
	return false
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Split breaks line into arguments the way a POSIX shell would: whitespace
// separates words, single quotes are literal, double quotes and bare
// backslashes escape. Shell operators are rejected rather than run.
func Split(line string) ([]string, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("unterminated quote or escape: %w", err)
	}
	if parser.Position >= 0 {
		return nil, errors.New("shell operators (; & | < >) are not supported")
	}
	return args, nil
}
