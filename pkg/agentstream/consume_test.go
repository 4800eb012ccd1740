package agentstream_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/agentstream"
	"github.com/papercomputeco/tabagent/pkg/logger"
)

type failingWriter struct{ calls int }

func (w *failingWriter) Write(_ []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

var _ = Describe("Consume", func() {
	var (
		ctx context.Context
		acc *agentstream.Accumulator
	)

	BeforeEach(func() {
		ctx = context.Background()
		acc = agentstream.NewAccumulator()
	})

	It("consumes a body until EOF", func() {
		body := strings.NewReader(`data: {"messages":[{"type":"ai","content":"Hel"}]}` + "\n" +
			`data: {"messages":[{"type":"ai","content":"lo"}]}` + "\n")

		stats, err := agentstream.Consume(ctx, body, acc, agentstream.WithLogger(logger.Nop()))
		Expect(err).NotTo(HaveOccurred())
		Expect(acc.Text()).To(Equal("Hello"))
		Expect(stats.Records).To(Equal(2))
		Expect(stats.Deltas).To(Equal(2))
	})

	It("reads with the configured fragment size", func() {
		body := strings.NewReader(`data: {"messages":[{"type":"ai","content":"small reads"}]}` + "\n")

		stats, err := agentstream.Consume(ctx, body, acc, agentstream.WithReadSize(4))
		Expect(err).NotTo(HaveOccurred())
		Expect(acc.Text()).To(Equal("small reads"))
		Expect(stats.Fragments).To(BeNumerically(">", 10))
	})

	It("aborts once on a transport failure and keeps earlier output", func() {
		reset := errors.New("connection reset by peer")
		body := newFragmentReader(reset,
			`data: {"messages":[{"type":"ai","content":"partial"}]}`+"\n",
			`data: {"messages":[{"type":"ai","con`,
		)

		stats, err := agentstream.Consume(ctx, body, acc)
		Expect(err).To(MatchError(reset))
		Expect(agentstream.IsTerminal(err)).To(BeTrue())

		Expect(acc.Text()).To(Equal("partial"))
		Expect(acc.Errors()).To(HaveLen(1))
		Expect(acc.Terminal()).To(MatchError(reset))
		Expect(stats.DiscardedBytes).To(Equal(len(`data: {"messages":[{"type":"ai","con`)))
	})

	It("aborts with the context error when cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		var deltas []string

		sink := agentstream.SinkFuncs{
			Delta: func(text string) {
				deltas = append(deltas, text)
				cancel()
			},
		}
		body := newFragmentReader(nil,
			`data: {"messages":[{"type":"ai","content":"first"}]}`+"\n",
			`data: {"messages":[{"type":"ai","content":"second"}]}`+"\n",
		)

		_, err := agentstream.Consume(cctx, body, agentstream.MultiSink(sink, acc))
		Expect(err).To(MatchError(context.Canceled))
		Expect(deltas).To(Equal([]string{"first"}))
		Expect(acc.Terminal()).To(MatchError(context.Canceled))
	})

	It("tees raw fragments before decoding", func() {
		raw := "event: values\n" + `data: {"messages":[{"type":"ai","content":"teed"}]}` + "\n\n"
		var dump bytes.Buffer

		_, err := agentstream.Consume(ctx, strings.NewReader(raw), acc, agentstream.WithTee(&dump))
		Expect(err).NotTo(HaveOccurred())
		Expect(dump.String()).To(Equal(raw))
		Expect(acc.Text()).To(Equal("teed"))
	})

	It("detaches a failing tee without failing the stream", func() {
		w := &failingWriter{}
		body := newFragmentReader(nil,
			`data: {"messages":[{"type":"ai","content":"a"}]}`+"\n",
			`data: {"messages":[{"type":"ai","content":"b"}]}`+"\n",
		)

		_, err := agentstream.Consume(ctx, body, acc, agentstream.WithTee(w))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.calls).To(Equal(1))
		Expect(acc.Text()).To(Equal("ab"))
	})
})
