package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated line while a slow daemon operation runs.
// When animate is false only the final message is written.
type Spinner struct {
	out       io.Writer
	formatter *Formatter
	animate   bool
	message   string
	running   bool
	stopCh    chan struct{}
	done      chan struct{}
	mu        sync.Mutex
	style     lipgloss.Style
	interval  time.Duration
}

func NewSpinner(out io.Writer, formatter *Formatter, animate bool) *Spinner {
	return &Spinner{
		out:       out,
		formatter: formatter,
		animate:   animate,
		style:     lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		interval:  80 * time.Millisecond,
	}
}

// Start begins the spinner animation with a message
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.running || !s.animate {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop()
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	<-s.done
	fmt.Fprint(s.out, "\r\033[K")
}

func (s *Spinner) StopWithMessage(message string) {
	s.Stop()
	fmt.Fprintln(s.out, s.formatter.FormatSuccess(message))
}

func (s *Spinner) StopWithError(message string) {
	s.Stop()
	fmt.Fprintln(s.out, s.formatter.FormatFailure(message))
}

func (s *Spinner) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()

			spin := spinnerFrames[frame]
			if s.formatter.colored {
				spin = s.style.Render(spin)
			}
			fmt.Fprintf(s.out, "\r\033[K%s %s", spin, s.formatter.FormatDim(msg))
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}
