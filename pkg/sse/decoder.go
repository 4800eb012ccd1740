package sse

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeBufSize is the scratch size handed to the UTF-8 transformer. The
// transformer makes progress as long as the buffer can hold one rune.
const decodeBufSize = 4096

// Decoder incrementally decodes UTF-8 byte fragments into text.
//
// A fragment that ends in the middle of a multi-byte character is decoded up
// to the last complete character; the trailing bytes are retained and
// prepended to the next fragment. Invalid byte sequences are replaced with
// U+FFFD, so decoding never fails.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	t     transform.Transformer
	carry []byte
	buf   []byte
}

// NewDecoder returns a Decoder with empty carry-over state.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8.NewDecoder(),
		buf: make([]byte, decodeBufSize),
	}
}

// Decode returns the text for as much of fragment (plus any bytes retained
// from the previous call) as can be unambiguously decoded.
func (d *Decoder) Decode(fragment []byte) string {
	return d.decode(fragment, false)
}

// Flush decodes any retained bytes best-effort, as if the stream ended, and
// resets the Decoder. An incomplete trailing sequence becomes U+FFFD.
func (d *Decoder) Flush() string {
	out := d.decode(nil, true)
	d.t.Reset()
	return out
}

// Pending returns the number of bytes retained for the next call.
func (d *Decoder) Pending() int {
	return len(d.carry)
}

func (d *Decoder) decode(fragment []byte, atEOF bool) string {
	src := fragment
	if len(d.carry) > 0 {
		src = append(d.carry, fragment...)
		d.carry = nil
	}

	var out strings.Builder
	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(d.buf, src, atEOF)
		out.Write(d.buf[:nDst])
		src = src[nSrc:]

		switch {
		case err == nil:
			if nSrc == 0 {
				return out.String()
			}
		case errors.Is(err, transform.ErrShortDst):
			// buf is full, loop again with the remaining src.
		case errors.Is(err, transform.ErrShortSrc):
			// Copy: src may alias the caller's fragment.
			d.carry = append([]byte(nil), src...)
			return out.String()
		default:
			// The UTF-8 decoder replaces rather than rejects, so this is
			// unreachable in practice. Substitute and move on.
			out.WriteRune(utf8.RuneError)
			if nSrc == 0 {
				src = src[1:]
			}
		}
	}

	return out.String()
}
