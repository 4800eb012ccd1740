package agentstream_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/agentstream"
)

var _ = Describe("Interpreter", func() {
	var i *agentstream.Interpreter

	BeforeEach(func() {
		i = agentstream.NewInterpreter()
	})

	It("extracts ai message content", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"ai","content":"Hel"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(Equal([]string{"Hel"}))
	})

	It("keeps message order within an event", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"ai","content":"a"},{"type":"ai","content":"b"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(Equal([]string{"a", "b"}))
	})

	It("skips human messages next to ai messages", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"human","content":"hi"},{"type":"ai","content":"hello"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(Equal([]string{"hello"}))
	})

	It("skips unknown roles and empty or absent content", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"tool","content":"x"},{"type":"ai","content":""},{"type":"ai"},{"type":"ai","content":null}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(BeEmpty())
	})

	It("treats a missing messages field as empty", func() {
		deltas, err := i.Interpret(`{"run_id":"1ef-abc"}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(BeEmpty())
	})

	It("treats a null messages field as empty", func() {
		deltas, err := i.Interpret(`{"messages":null}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(BeEmpty())
	})

	DescribeTable("matches payload keys exactly",
		func(record string) {
			deltas, err := i.Interpret(record)
			Expect(err).NotTo(HaveOccurred())
			Expect(deltas).To(BeEmpty())
		},
		Entry("capitalized type key", `{"messages":[{"Type":"ai","content":"x"}]}`),
		Entry("upper case messages and content keys", `{"MESSAGES":[{"type":"ai","CONTENT":"y"}]}`),
		Entry("human entry with a second, differently cased type key", `{"messages":[{"type":"human","Type":"ai","content":"z"}]}`),
		Entry("ai entry whose content key is cased differently", `{"messages":[{"type":"ai","Content":"w"}]}`),
		Entry("text block with a cased type key", `{"messages":[{"type":"ai","content":[{"Type":"text","text":"v"}]}]}`),
	)

	It("ignores a differently cased duplicate when the exact key is ai", func() {
		deltas, err := i.Interpret(`{"messages":[{"Type":"human","type":"ai","content":"ok"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(Equal([]string{"ok"}))
	})

	It("reads non-string scalar content as empty", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"ai","content":123},{"type":"ai","content":true},{"type":"ai","content":{"text":"x"}}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(BeEmpty())
	})

	It("skips entries whose type is not a string", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":["ai"],"content":"x"},{"type":null,"content":"y"}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(BeEmpty())
	})

	It("concatenates text blocks of structured content", func() {
		deltas, err := i.Interpret(`{"messages":[{"type":"ai","content":[{"type":"text","text":"Hi "},{"type":"tool_use","id":"t1"},{"type":"text","text":"there"}]}]}`)
		Expect(err).NotTo(HaveOccurred())
		Expect(deltas).To(Equal([]string{"Hi there"}))
	})

	DescribeTable("rejects malformed payloads",
		func(record string) {
			deltas, err := i.Interpret(record)
			Expect(deltas).To(BeNil())

			var malformed *agentstream.MalformedRecordError
			Expect(errors.As(err, &malformed)).To(BeTrue())
			Expect(malformed.Record).To(Equal(record))
			Expect(malformed.Unwrap()).To(HaveOccurred())
			Expect(agentstream.IsTerminal(err)).To(BeFalse())
		},
		Entry("invalid JSON", `{not valid json}`),
		Entry("empty payload", ``),
		Entry("OpenAI style sentinel", `[DONE]`),
		Entry("null payload", `null`),
		Entry("JSON array", `[{"type":"ai","content":"x"}]`),
		Entry("JSON string", `"hello"`),
		Entry("messages is not a list", `{"messages":"hello"}`),
		Entry("message entry is not an object", `{"messages":[42]}`),
		Entry("message entry is null", `{"messages":[null]}`),
	)
})
