package ui

import (
	"fmt"
	"sync"
	"time"
)

// Spinner shows an animated progress indicator for long-running steps.
type Spinner struct {
	message string
	frames  []string
	stop    chan struct{}
	done    sync.WaitGroup
	mu      sync.Mutex
	active  bool
}

// NewSpinner creates a spinner with the given message
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		stop:    make(chan struct{}),
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				fmt.Printf("\r%s %s", ColorProgress(frame), s.message)
				i++
			}
		}
	}()
}

// Stop ends the spinner and prints the final status line
func (s *Spinner) Stop(success bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false

	close(s.stop)
	s.done.Wait()

	if success {
		fmt.Printf("\r%s %s\n", ColorSuccess("✓"), message)
	} else {
		fmt.Printf("\r%s %s\n", ColorError("✗"), message)
	}
}

// UpdateMessage changes the message shown next to the spinner
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
}
