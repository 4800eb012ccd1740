package session

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tabagent/pkg/config"
	"github.com/papercomputeco/tabagent/pkg/logger"
	"github.com/papercomputeco/tabagent/pkg/storage"
)

// stuckDriver is a storage.Driver whose Close fails.
type stuckDriver struct {
	closed int
}

func (d *stuckDriver) Put(context.Context, *storage.Run) error { return nil }

func (d *stuckDriver) Get(_ context.Context, id string) (*storage.Run, error) {
	return nil, storage.NotFoundError{ID: id}
}

func (d *stuckDriver) List(context.Context, int) ([]*storage.Run, error) { return nil, nil }

func (d *stuckDriver) Close() error {
	d.closed++
	return errors.New("database is locked")
}

var _ = Describe("closeAfterFailedOpen", func() {
	It("closes what was opened and logs the close error", func() {
		var buf bytes.Buffer
		driver := &stuckDriver{}
		s := &Session{
			Config: config.NewDefaultConfig(),
			Logger: logger.NewLoggerWithWriters(true, &buf),
			Driver: driver,
		}

		s.closeAfterFailedOpen()

		Expect(driver.closed).To(Equal(1))
		Expect(buf.String()).To(ContainSubstring("closing session after failed open"))
		Expect(buf.String()).To(ContainSubstring("database is locked"))
	})

	It("logs nothing when everything closes cleanly", func() {
		var buf bytes.Buffer
		s := &Session{Logger: logger.NewLoggerWithWriters(true, &buf)}

		s.closeAfterFailedOpen()

		Expect(buf.String()).To(BeEmpty())
	})
})
