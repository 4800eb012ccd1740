package agentstream

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sink receives the output of a Stream.
//
// OnDelta is called once per assistant message delta, in arrival order.
// OnError is called once per malformed record (*MalformedRecordError) and at
// most once per stream for a terminal failure (*TransportError).
type Sink interface {
	OnDelta(text string)
	OnError(err error)
}

// SinkFuncs adapts plain functions to a Sink. Nil fields are ignored.
type SinkFuncs struct {
	Delta func(text string)
	Error func(err error)
}

func (f SinkFuncs) OnDelta(text string) {
	if f.Delta != nil {
		f.Delta(text)
	}
}

func (f SinkFuncs) OnError(err error) {
	if f.Error != nil {
		f.Error(err)
	}
}

// Accumulator collects the accumulated output and every reported error.
type Accumulator struct {
	text     strings.Builder
	errs     []error
	terminal error
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

func (a *Accumulator) OnDelta(text string) {
	a.text.WriteString(text)
}

func (a *Accumulator) OnError(err error) {
	a.errs = append(a.errs, err)
	if IsTerminal(err) {
		a.terminal = err
	}
}

// Text returns the concatenation of all deltas so far.
func (a *Accumulator) Text() string {
	return a.text.String()
}

// Errors returns every error reported so far, in order.
func (a *Accumulator) Errors() []error {
	return a.errs
}

// Terminal returns the terminal error, or nil if the stream did not fail.
func (a *Accumulator) Terminal() error {
	return a.terminal
}

// WriterSink writes every delta to w as soon as it arrives. A terminal error
// appends a visible "Error: ..." line after whatever was already written;
// malformed records are only counted since the logger already reports them.
type WriterSink struct {
	w         io.Writer
	last      byte
	wrote     bool
	malformed int
}

// NewWriterSink returns a WriterSink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) OnDelta(text string) {
	if text == "" {
		return
	}

	_, _ = io.WriteString(s.w, text)
	s.last = text[len(text)-1]
	s.wrote = true
}

func (s *WriterSink) OnError(err error) {
	var te *TransportError
	if !errors.As(err, &te) {
		s.malformed++
		return
	}

	if s.wrote && s.last != '\n' {
		_, _ = io.WriteString(s.w, "\n")
	}
	_, _ = fmt.Fprintf(s.w, "Error: %v\n", te.Err)
	s.last = '\n'
	s.wrote = true
}

// Malformed returns how many malformed records were reported.
func (s *WriterSink) Malformed() int {
	return s.malformed
}

type multiSink []Sink

// MultiSink returns a Sink that forwards every call to each of sinks in order.
func MultiSink(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) OnDelta(text string) {
	for _, s := range m {
		s.OnDelta(text)
	}
}

func (m multiSink) OnError(err error) {
	for _, s := range m {
		s.OnError(err)
	}
}
