package eventstream_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/eventstream"
	"github.com/papercomputeco/tabagent/pkg/storage"
)

var _ = Describe("Event", func() {
	var run *storage.Run

	BeforeEach(func() {
		started := time.Unix(1735689600, 0).UTC()
		run = &storage.Run{
			ID:          "run-1",
			AssistantID: "graph-1",
			Target:      "http://127.0.0.1:2024",
			Query:       "top regions",
			Output:      "West leads",
			Error:       "stream transport failed: reset",
			Stats:       storage.RunStats{Records: 4, Deltas: 3},
			StartedAt:   started,
			CompletedAt: started.Add(2 * time.Second),
		}
	})

	It("builds a RunCompletedEvent from a run", func() {
		event := eventstream.NewRunCompletedEvent(run)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeRunCompleted))
		Expect(strings.HasPrefix(event.EventID, "evt_")).To(BeTrue())
		Expect(event.EmittedAt).NotTo(BeZero())
		Expect(event.Source.AssistantID).To(Equal("graph-1"))
		Expect(event.Run.ID).To(Equal("run-1"))
		Expect(event.Run.Failed).To(BeTrue())
		Expect(event.Run.DurationMs).To(Equal(int64(2000)))
		Expect(event.Run.Stats.Deltas).To(Equal(3))
	})

	It("gives every event a distinct ID", func() {
		a := eventstream.NewRunCompletedEvent(run)
		b := eventstream.NewRunCompletedEvent(run)
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})

	It("marshals RunCompletedEvent with expected top-level keys", func() {
		payload, err := json.Marshal(eventstream.NewRunCompletedEvent(run))
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("run"))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeRunCompleted).To(Equal("tabagent.run.completed"))
	})

	It("provides ErrNilRunEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilRunEvent).To(MatchError("nil run event"))
	})
})
