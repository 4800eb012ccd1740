package sse

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decoder", func() {
	var d *Decoder

	BeforeEach(func() {
		d = NewDecoder()
	})

	Describe("Decode", func() {
		It("decodes plain ASCII fragments as they arrive", func() {
			Expect(d.Decode([]byte("data: hello\n"))).To(Equal("data: hello\n"))
			Expect(d.Pending()).To(Equal(0))
		})

		It("returns an empty string for an empty fragment", func() {
			Expect(d.Decode(nil)).To(BeEmpty())
			Expect(d.Decode([]byte{})).To(BeEmpty())
		})

		It("reconstructs a multi-byte character split across two fragments", func() {
			encoded := []byte("é")
			Expect(encoded).To(HaveLen(2))

			first := d.Decode(append([]byte("caf"), encoded[0]))
			Expect(first).To(Equal("caf"))
			Expect(d.Pending()).To(Equal(1))

			second := d.Decode([]byte{encoded[1], '!'})
			Expect(second).To(Equal("é!"))
			Expect(d.Pending()).To(Equal(0))
		})

		It("reconstructs a four byte character fed one byte at a time", func() {
			encoded := []byte("🙂")
			Expect(encoded).To(HaveLen(4))

			var out strings.Builder
			for _, b := range encoded {
				out.WriteString(d.Decode([]byte{b}))
			}
			Expect(out.String()).To(Equal("🙂"))
		})

		It("does not retain a reference to the caller's fragment", func() {
			encoded := []byte("€")
			frag := []byte{'a', encoded[0], encoded[1]}

			Expect(d.Decode(frag)).To(Equal("a"))
			frag[1], frag[2] = 'x', 'x'

			Expect(d.Decode([]byte{encoded[2]})).To(Equal("€"))
		})

		It("replaces invalid byte sequences instead of failing", func() {
			out := d.Decode([]byte{'a', 0xff, 'b'})
			Expect(out).To(Equal("a�b"))
		})

		It("handles fragments larger than its scratch buffer", func() {
			big := strings.Repeat("ü", decodeBufSize)
			Expect(d.Decode([]byte(big))).To(Equal(big))
		})
	})

	Describe("Flush", func() {
		It("returns nothing when no bytes are retained", func() {
			d.Decode([]byte("complete"))
			Expect(d.Flush()).To(BeEmpty())
		})

		It("decodes an incomplete trailing sequence best-effort", func() {
			encoded := []byte("€")
			Expect(d.Decode(encoded[:2])).To(BeEmpty())

			out := d.Flush()
			Expect(out).To(ContainSubstring("�"))
			Expect(d.Pending()).To(Equal(0))
		})

		It("leaves the decoder reusable afterwards", func() {
			d.Decode([]byte{0xe2})
			d.Flush()
			Expect(d.Decode([]byte("ok"))).To(Equal("ok"))
		})
	})
})
