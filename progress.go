package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ANSI color codes for terminal output.
const (
	colorReset = "\033[0m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
)

// spinner provides a terminal loading animation on stderr.
type spinner struct {
	mu      sync.Mutex
	out     io.Writer
	active  bool
	stop    chan struct{}
	done    chan struct{}
	message string
	frames  []string
	start   time.Time
	isTTY   bool
}

func newSpinner() *spinner {
	isTTY := false
	if fi, err := os.Stderr.Stat(); err == nil {
		isTTY = (fi.Mode() & os.ModeCharDevice) != 0
	}
	if os.Getenv("NO_COLOR") != "" {
		isTTY = false
	}
	return newSpinnerTo(os.Stderr, isTTY)
}

func newSpinnerTo(w io.Writer, isTTY bool) *spinner {
	return &spinner{
		out:    w,
		frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		isTTY:  isTTY,
	}
}

func (s *spinner) Start(msg string) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.message = msg
	s.start = time.Now()
	s.mu.Unlock()

	if !s.isTTY {
		_, _ = fmt.Fprintf(s.out, "⋯ %s\n", msg)
		return
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		i := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				elapsed := time.Since(s.start).Round(100 * time.Millisecond)
				_, _ = fmt.Fprintf(s.out, "\r%s%s %s%s %s[%s]%s  ", colorCyan, s.frames[i%len(s.frames)], s.message, colorReset, colorDim, elapsed, colorReset)
				s.mu.Unlock()
				i++
			}
		}
	}()
}

func (s *spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stopCh := s.stop
	doneCh := s.done
	s.mu.Unlock()

	if s.isTTY && stopCh != nil {
		close(stopCh)
		<-doneCh
		_, _ = fmt.Fprint(s.out, "\r\033[K")
	}
}

// track runs fn with the spinner showing msg.
func (s *spinner) track(msg string, fn func() error) error {
	s.Start(msg)
	defer s.Stop()
	return fn()
}
