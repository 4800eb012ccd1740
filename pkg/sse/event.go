// Package sse provides the incremental, line-framed SSE (Server-Sent Events)
// decoding used by tabagent to consume streamed agent runs. It is designed to
// be driven one network fragment at a time: a Decoder turns raw bytes into
// text while carrying split UTF-8 sequences across fragments, and a Framer
// turns that text into "data: " records while carrying incomplete lines.
//
// Records are delimited by a single "\n". Only lines beginning with the
// literal "data: " prefix yield a record; "event:", "id:", comment and blank
// keep-alive lines are inert.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

// DataPrefix is the literal marker a line must start with to carry a record
// payload. Note the trailing space: "data:" without it is not a record.
const DataPrefix = "data: "

// ParseRecord tests a single complete line (without its "\n" terminator).
// When the line starts with DataPrefix, the prefix is stripped and the
// remaining payload is trimmed of surrounding whitespace (which also removes
// a trailing "\r" from CRLF framed streams).
func ParseRecord(line string) (string, bool) {
	payload, ok := strings.CutPrefix(line, DataPrefix)
	if !ok {
		return "", false
	}

	return strings.TrimSpace(payload), true
}
