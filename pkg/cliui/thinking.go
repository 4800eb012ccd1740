package cliui

import (
	"fmt"
	"io"
	"sync"
)

// Thinking animates a dim "Thinking..." placeholder until the first piece
// of real output arrives, then erases it.
type Thinking struct {
	w    io.Writer
	sp   *spinner
	once sync.Once
}

// NewThinking starts the placeholder on w.
func NewThinking(w io.Writer) *Thinking {
	return &Thinking{
		w:  w,
		sp: startSpinner(w, DimStyle.Render("Thinking...")),
	}
}

// Clear stops and erases the placeholder. Only the first call has any
// effect, and it is safe to call from any goroutine.
func (t *Thinking) Clear() {
	t.once.Do(func() {
		t.sp.stop()
		fmt.Fprint(t.w, "\r\033[K")
	})
}
