package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection.
var ErrCancelled = errors.New("cancelled")

// SelectorOption represents a single option in the selector
type SelectorOption struct {
	Label       string
	Description string
}

// Selector asks the user to pick one option. On a terminal it is an
// arrow-key menu; otherwise it reads a number from in.
type Selector struct {
	question string
	options  []SelectorOption
	selected int
	colored  bool
	in       io.Reader
	out      io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []SelectorOption, colored bool, in io.Reader, out io.Writer) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       in,
		out:      out,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// Run returns the index of the chosen option.
func (s *Selector) Run() (int, error) {
	if len(s.options) == 0 {
		return 0, errors.New("nothing to select")
	}

	file, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return s.runSimple()
	}

	fd := int(file.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h")
	}()
	fmt.Fprint(s.out, "\033[?25l")

	totalLines := len(s.options) + 3
	s.printMenu()

	reader := bufio.NewReader(file)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return 0, err
		}

		switch b {
		case 13, 10:
			s.clearMenu(totalLines)
			return s.selected, nil
		case 3, 'q':
			s.clearMenu(totalLines)
			return 0, ErrCancelled
		case 'j':
			s.moveDown()
		case 'k':
			s.moveUp()
		case 27:
			b2, _ := reader.ReadByte()
			if b2 == '[' {
				b3, _ := reader.ReadByte()
				switch b3 {
				case 'A':
					s.moveUp()
				case 'B':
					s.moveDown()
				}
			}
		default:
			if b >= '1' && b <= '9' && int(b-'1') < len(s.options) {
				s.clearMenu(totalLines)
				return int(b - '1'), nil
			}
		}

		s.clearMenu(totalLines)
		s.printMenu()
	}
}

func (s *Selector) label(opt SelectorOption) string {
	if opt.Description != "" {
		return opt.Label + " - " + opt.Description
	}
	return opt.Label
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	if s.colored {
		sb.WriteString(s.questionStyle.Render(s.question))
		sb.WriteString("\r\n")
		sb.WriteString(s.hintStyle.Render("[j/k or arrows] move  [enter] select  [q] cancel"))
	} else {
		sb.WriteString(s.question)
		sb.WriteString("\r\n")
		sb.WriteString("[j/k or arrows] move  [enter] select  [q] cancel")
	}
	sb.WriteString("\r\n\r\n")

	for i, opt := range s.options {
		cursor := "  "
		if i == s.selected {
			cursor = "> "
		}
		switch {
		case !s.colored:
			sb.WriteString(cursor + s.label(opt))
		case i == s.selected:
			sb.WriteString(s.cursorStyle.Render(cursor) + s.selectedStyle.Render(s.label(opt)))
		default:
			sb.WriteString(cursor + s.optionStyle.Render(s.label(opt)))
		}
		sb.WriteString("\r\n")
	}

	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

func (s *Selector) runSimple() (int, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, s.label(opt))
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && input == "" {
		return 0, ErrCancelled
	}

	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > len(s.options) {
		return 0, ErrCancelled
	}
	return n - 1, nil
}

func (s *Selector) moveUp() {
	if s.selected > 0 {
		s.selected--
	} else {
		s.selected = len(s.options) - 1
	}
}

func (s *Selector) moveDown() {
	if s.selected < len(s.options)-1 {
		s.selected++
	} else {
		s.selected = 0
	}
}

// Confirm asks a yes/no question; anything but an explicit yes is no.
func Confirm(question string, colored bool, in io.Reader, out io.Writer) bool {
	choice, err := NewSelector(question, []SelectorOption{{Label: "Yes"}, {Label: "No"}}, colored, in, out).Run()
	return err == nil && choice == 0
}
