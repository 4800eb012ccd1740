package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/pkg/eventstream"
	"github.com/papercomputeco/tabagent/pkg/eventstream/nop"
	"github.com/papercomputeco/tabagent/pkg/storage"
	"github.com/papercomputeco/tabagent/pkg/storage/inmemory"
)

// recordingPublisher keeps every event it is handed.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.RunCompletedEvent
	err    error
}

func (r *recordingPublisher) PublishRun(_ context.Context, e *eventstream.RunCompletedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

// failingDriver rejects every Put.
type failingDriver struct {
	*inmemory.Driver
}

func (failingDriver) Put(context.Context, *storage.Run) error {
	return errors.New("disk full")
}

// blockingDriver holds every Put until release is closed.
type blockingDriver struct {
	*inmemory.Driver
	release chan struct{}
}

func (b blockingDriver) Put(ctx context.Context, run *storage.Run) error {
	<-b.release
	return b.Driver.Put(ctx, run)
}

func testRun(id string) *storage.Run {
	now := time.Now().UTC()
	return &storage.Run{
		ID:          id,
		AssistantID: "graph-1",
		Query:       "q",
		Output:      "a",
		StartedAt:   now,
		CompletedAt: now.Add(time.Second),
	}
}

var _ = Describe("Worker Pool", func() {
	var (
		logger *zap.Logger
		ctx    context.Context
	)

	BeforeEach(func() {
		logger, _ = zap.NewDevelopment()
		ctx = context.Background()
	})

	It("requires a storage driver", func() {
		_, err := NewPool(&Config{Logger: logger})
		Expect(err).To(HaveOccurred())
	})

	It("stores and publishes every enqueued run", func() {
		driver := inmemory.NewDriver()
		pub := &recordingPublisher{}
		wp, err := NewPool(&Config{Driver: driver, Publisher: pub, Logger: logger})
		Expect(err).NotTo(HaveOccurred())

		for i := range 10 {
			Expect(wp.Enqueue(Job{Run: testRun(fmt.Sprintf("run-%d", i))})).To(BeTrue())
		}
		wp.Close()

		Expect(driver.Count()).To(Equal(10))
		Expect(pub.events).To(HaveLen(10))

		got, err := driver.Get(ctx, "run-3")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Output).To(Equal("a"))
	})

	It("works without a publisher", func() {
		driver := inmemory.NewDriver()
		wp, err := NewPool(&Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(Job{Run: testRun("run-1")})).To(BeTrue())
		wp.Close()
		Expect(driver.Count()).To(Equal(1))
	})

	It("does not publish runs that failed to store", func() {
		pub := nop.NewPublisher()
		wp, err := NewPool(&Config{
			Driver:    failingDriver{inmemory.NewDriver()},
			Publisher: pub,
			Logger:    logger,
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(Job{Run: testRun("run-1")})).To(BeTrue())
		wp.Close()
		Expect(pub.Published()).To(BeZero())
	})

	It("keeps the stored run when publishing fails", func() {
		driver := inmemory.NewDriver()
		pub := &recordingPublisher{err: errors.New("broker down")}
		wp, err := NewPool(&Config{Driver: driver, Publisher: pub, Logger: logger})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.Enqueue(Job{Run: testRun("run-1")})).To(BeTrue())
		wp.Close()
		Expect(driver.Count()).To(Equal(1))
	})

	It("drops jobs when the queue is full", func() {
		release := make(chan struct{})
		driver := blockingDriver{Driver: inmemory.NewDriver(), release: release}
		wp, err := NewPool(&Config{Driver: driver, NumWorkers: 1, QueueSize: 1, Logger: logger})
		Expect(err).NotTo(HaveOccurred())

		// The single worker picks up the first job and blocks on it.
		Expect(wp.Enqueue(Job{Run: testRun("run-0")})).To(BeTrue())
		Eventually(func() int { return len(wp.queue) }).Should(BeZero())

		Expect(wp.Enqueue(Job{Run: testRun("run-1")})).To(BeTrue())
		Expect(wp.Enqueue(Job{Run: testRun("run-2")})).To(BeFalse())

		close(release)
		wp.Close()
		Expect(driver.Count()).To(Equal(2))
	})

	It("rejects jobs after Close and tolerates a second Close", func() {
		wp, err := NewPool(&Config{Driver: inmemory.NewDriver()})
		Expect(err).NotTo(HaveOccurred())

		wp.Close()
		Expect(wp.Enqueue(Job{Run: testRun("late")})).To(BeFalse())
		Expect(wp.Close).NotTo(Panic())
	})

	It("ignores jobs without a run", func() {
		wp, err := NewPool(&Config{Driver: inmemory.NewDriver()})
		Expect(err).NotTo(HaveOccurred())
		defer wp.Close()

		Expect(wp.Enqueue(Job{})).To(BeFalse())
	})
})
