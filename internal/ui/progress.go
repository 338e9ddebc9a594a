// Package ui draws interactive feedback on a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const frameInterval = 100 * time.Millisecond

// ProgressIndicator provides visual feedback while a cluster is provisioning.
// Animation only happens when the output is an interactive terminal.
type ProgressIndicator struct {
	output      io.Writer
	quiet       bool
	interactive bool

	mu      sync.Mutex
	spinner *Spinner
}

// NewProgressIndicator creates an indicator writing to w.
func NewProgressIndicator(w io.Writer, quiet bool) *ProgressIndicator {
	return &ProgressIndicator{
		output:      w,
		quiet:       quiet,
		interactive: IsTerminal(w),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// StartSpinner starts a spinner with the given message.
func (p *ProgressIndicator) StartSpinner(message string) {
	if p.quiet || !p.interactive {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.halt()
	}
	p.spinner = NewSpinner(p.output, message)
	p.spinner.Start()
}

// Update replaces the spinner message.
func (p *ProgressIndicator) Update(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.spinner.SetMessage(message)
	}
}

// StopSpinner stops the current spinner and prints a success line.
func (p *ProgressIndicator) StopSpinner(message string) {
	p.stop("✓", message)
}

// StopSpinnerWithError stops the spinner and prints a failure line.
func (p *ProgressIndicator) StopSpinnerWithError(message string) {
	p.stop("✗", message)
}

func (p *ProgressIndicator) stop(mark, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil {
		return
	}
	p.spinner.halt()
	p.spinner = nil
	fmt.Fprintf(p.output, "\r\033[K%s %s\n", mark, message)
}

// Spinner provides a spinning animation for operations.
type Spinner struct {
	output io.Writer
	frames []string

	mu      sync.Mutex
	message string
	active  bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a new spinner.
func NewSpinner(output io.Writer, message string) *Spinner {
	return &Spinner{
		output:  output,
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate(s.stop, s.done)
}

// SetMessage changes the text shown next to the spinner.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Active reports whether the animation goroutine is running.
func (s *Spinner) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// halt stops the animation and waits for the goroutine to exit.
func (s *Spinner) halt() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()
	<-done
}

func (s *Spinner) animate(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			message := s.message
			s.mu.Unlock()
			fmt.Fprintf(s.output, "\r%s %s", s.frames[frame%len(s.frames)], message)
			frame++
		}
	}
}
