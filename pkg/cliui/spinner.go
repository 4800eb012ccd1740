package cliui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
)

const spinnerInterval = 80 * time.Millisecond

// spinner redraws "\r<frame> <label>" on w until stop is called. Nothing
// else may write to w while it runs.
type spinner struct {
	w       io.Writer
	label   string
	done    chan struct{}
	stopped chan struct{}
}

func startSpinner(w io.Writer, label string) *spinner {
	s := &spinner{
		w:       w,
		label:   label,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *spinner) loop() {
	defer close(s.stopped)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		fmt.Fprintf(s.w, "\r%s %s", spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]), s.label)

		select {
		case <-s.done:
			return
		case <-ticker.C:
		}
	}
}

// stop halts the animation and returns once the last frame is drawn. The
// caller then owns w again.
func (s *spinner) stop() {
	close(s.done)
	<-s.stopped
}

// Step shows a spinner labelled msg while fn runs, then replaces it with
// a ✓ or ✗ and the elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	sp := startSpinner(w, msg)

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	sp.stop()
	fmt.Fprintf(w, "\r%s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render("("+FormatDuration(elapsed)+")"),
	)

	return err
}
