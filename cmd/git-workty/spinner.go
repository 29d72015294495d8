package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

const statusSpinnerDelay = 150 * time.Millisecond

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return s
}

// startDelayedSpinner animates message on w after delay until the returned
// stop func is called. Fast operations never show it.
func startDelayedSpinner(w io.Writer, enabled bool, message string, delay time.Duration) func() {
	if strings.TrimSpace(message) == "" {
		message = "Working..."
	}
	if delay < 0 {
		delay = 0
	}
	if !enabled {
		return func() {}
	}

	done := make(chan struct{})
	stopped := make(chan struct{})
	var once sync.Once
	go func() {
		defer close(stopped)
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-done:
			return
		case <-timer.C:
		}

		s := newSpinner()
		frames := s.Spinner.Frames
		interval := s.Spinner.FPS
		if interval <= 0 {
			interval = 90 * time.Millisecond
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		i := 0
		for {
			frame := s.Style.Render(frames[i%len(frames)])
			fmt.Fprintf(w, "\r%s %s", frame, message)
			i++
			select {
			case <-done:
				fmt.Fprint(w, "\r\033[2K")
				return
			case <-ticker.C:
			}
		}
	}()
	return func() {
		once.Do(func() {
			close(done)
			<-stopped
		})
	}
}

// progress shows a spinner on stderr for interactive, non-JSON runs.
func (a *app) progress(message string) func() {
	enabled := a.isInteractive() && !a.flags.json
	return startDelayedSpinner(a.stderr, enabled, message, statusSpinnerDelay)
}
