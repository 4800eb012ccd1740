// Package storagetest holds behavior shared by every storage.Driver test
// suite.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/storage"
)

// NewRun returns a completed run started at base plus offset seconds.
func NewRun(id string, offset int) *storage.Run {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := base.Add(time.Duration(offset) * time.Second)
	return &storage.Run{
		ID:          id,
		AssistantID: "graph-1",
		Target:      "http://127.0.0.1:2024",
		Query:       "question " + id,
		Output:      "answer " + id,
		Stats: storage.RunStats{
			Fragments: 3,
			Bytes:     420,
			Records:   5,
			Deltas:    4,
			Malformed: 1,
		},
		StartedAt:   started,
		CompletedAt: started.Add(1500 * time.Millisecond),
	}
}

// DescribeDriver registers the specs every storage.Driver must pass.
// newDriver is called before each spec and must return an empty store.
func DescribeDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() {
			Expect(driver.Close()).To(Succeed())
		})
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a run", func() {
			run := NewRun("run-1", 0)
			Expect(driver.Put(ctx, run)).To(Succeed())

			got, err := driver.Get(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(run.ID))
			Expect(got.AssistantID).To(Equal(run.AssistantID))
			Expect(got.Target).To(Equal(run.Target))
			Expect(got.Query).To(Equal(run.Query))
			Expect(got.Output).To(Equal(run.Output))
			Expect(got.Error).To(BeEmpty())
			Expect(got.Stats).To(Equal(run.Stats))
			Expect(got.StartedAt).To(BeTemporally("==", run.StartedAt))
			Expect(got.CompletedAt).To(BeTemporally("==", run.CompletedAt))
			Expect(got.Duration()).To(Equal(1500 * time.Millisecond))
		})

		It("keeps unicode output intact", func() {
			run := NewRun("run-u", 0)
			run.Output = "café 🙂 \n line two"
			Expect(driver.Put(ctx, run)).To(Succeed())

			got, err := driver.Get(ctx, "run-u")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Output).To(Equal("café 🙂 \n line two"))
		})

		It("replaces a run stored with the same ID", func() {
			Expect(driver.Put(ctx, NewRun("run-1", 0))).To(Succeed())

			failed := NewRun("run-1", 0)
			failed.Output = "partial"
			failed.Error = "stream transport failed: connection reset"
			Expect(driver.Put(ctx, failed)).To(Succeed())

			got, err := driver.Get(ctx, "run-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Output).To(Equal("partial"))
			Expect(got.Failed()).To(BeTrue())

			all, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, "missing")
			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.ID).To(Equal("missing"))
		})

		It("rejects nil runs", func() {
			Expect(driver.Put(ctx, nil)).To(MatchError(storage.ErrNilRun))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			for i := range 5 {
				Expect(driver.Put(ctx, NewRun(fmt.Sprintf("run-%d", i), i*10))).To(Succeed())
			}
		})

		It("returns every run newest first", func() {
			runs, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(runs))
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"run-4", "run-3", "run-2", "run-1", "run-0"}))
		})

		It("honors the limit", func() {
			runs, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal("run-4"))
			Expect(runs[1].ID).To(Equal("run-3"))
		})
	})
}
