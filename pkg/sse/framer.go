package sse

import "strings"

// Framer splits decoded text into SSE lines and yields the "data: " records.
//
// Text that does not yet end in "\n" is held in a pending line buffer and
// joined with the next pushed text. Because a record is only valid once
// terminated, the pending buffer is never turned into a record: callers
// Discard it when the stream ends.
//
// Framing is chunking-independent: pushing the concatenation of several
// fragments at once yields the same records as pushing them one by one.
type Framer struct {
	// pending accumulates the terminator-less suffix of the text seen so far.
	pending strings.Builder

	// lines counts complete lines, records or not.
	lines int
}

// NewFramer returns a Framer with an empty pending line buffer.
func NewFramer() *Framer {
	return &Framer{}
}

// Push appends text to the pending line buffer and returns the records of
// every line completed by it, in order. Lines without the "data: " prefix are
// dropped.
func (f *Framer) Push(text string) []string {
	var records []string

	for {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			break
		}

		line := text[:idx]
		text = text[idx+1:]

		if f.pending.Len() > 0 {
			f.pending.WriteString(line)
			line = f.pending.String()
			f.pending.Reset()
		}

		f.lines++
		if record, ok := ParseRecord(line); ok {
			records = append(records, record)
		}
	}

	f.pending.WriteString(text)
	return records
}

// Pending returns the current, unterminated line content.
func (f *Framer) Pending() string {
	return f.pending.String()
}

// Discard clears the pending line buffer and returns what it held.
func (f *Framer) Discard() string {
	rest := f.pending.String()
	f.pending.Reset()
	return rest
}

// Lines returns the number of complete lines pushed so far.
func (f *Framer) Lines() int {
	return f.lines
}
