// Package session wires a resolved config into the pieces a command needs to
// run agent queries: the logger, the run store, the event publisher, the
// recording pool and the runner.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/tabagent/cmd/tabagent/sqlitepath"
	"github.com/papercomputeco/tabagent/pkg/config"
	"github.com/papercomputeco/tabagent/pkg/eventstream"
	"github.com/papercomputeco/tabagent/pkg/eventstream/kafka"
	"github.com/papercomputeco/tabagent/pkg/eventstream/nop"
	"github.com/papercomputeco/tabagent/pkg/langgraph"
	"github.com/papercomputeco/tabagent/pkg/storage"
	"github.com/papercomputeco/tabagent/pkg/storage/inmemory"
	"github.com/papercomputeco/tabagent/pkg/storage/postgres"
	"github.com/papercomputeco/tabagent/pkg/storage/sqlite"
	"github.com/papercomputeco/tabagent/runner"
	"github.com/papercomputeco/tabagent/runner/worker"
)

// Options tune how a Session is opened.
type Options struct {
	// ConfigDir overrides .tabagent/ resolution.
	ConfigDir string

	// NoRecord skips opening storage and publishing entirely.
	NoRecord bool
}

// Session owns everything opened for a command and closes it in reverse.
type Session struct {
	Config    *config.Config
	Logger    *zap.Logger
	Driver    storage.Driver
	Publisher eventstream.Publisher
	Pool      *worker.Pool
	Runner    *runner.Runner
}

// Open builds a Session from cfg. The caller owns logger and must Close the
// Session.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts Options) (*Session, error) {
	timeout, err := cfg.Agent.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	client, err := langgraph.NewClient(langgraph.Config{
		Target: cfg.Agent.Target,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{Config: cfg, Logger: logger}

	if !opts.NoRecord {
		s.Driver, err = NewStorageDriver(ctx, cfg, opts.ConfigDir, logger)
		if err != nil {
			return nil, err
		}

		s.Publisher, err = NewPublisher(cfg, logger)
		if err != nil {
			s.closeAfterFailedOpen()
			return nil, err
		}

		s.Pool, err = worker.NewPool(&worker.Config{
			Driver:    s.Driver,
			Publisher: s.Publisher,
			Logger:    logger,
		})
		if err != nil {
			s.closeAfterFailedOpen()
			return nil, err
		}
	}

	s.Runner, err = runner.New(&runner.Config{
		Client:      client,
		Target:      client.Target(),
		AssistantID: cfg.Agent.AssistantID,
		Timeout:     timeout,
		Pool:        s.Pool,
		Logger:      logger,
	})
	if err != nil {
		s.closeAfterFailedOpen()
		return nil, err
	}

	return s, nil
}

// closeAfterFailedOpen releases what Open managed to build before failing.
// The open error is what the caller reports, so close errors are only logged.
func (s *Session) closeAfterFailedOpen() {
	if err := s.Close(); err != nil {
		s.Logger.Debug("closing session after failed open", zap.Error(err))
	}
}

// Close drains the recording pool, then closes the publisher and the store.
func (s *Session) Close() error {
	if s.Pool != nil {
		s.Pool.Close()
	}

	var errs []error
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing publisher: %w", err))
		}
	}
	if s.Driver != nil {
		if err := s.Driver.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	return errors.Join(errs...)
}

// NewStorageDriver opens the run store selected by cfg.Storage.Provider.
func NewStorageDriver(ctx context.Context, cfg *config.Config, configDir string, logger *zap.Logger) (storage.Driver, error) {
	switch cfg.Storage.Provider {
	case config.StorageMemory:
		logger.Debug("using in-memory storage")
		return inmemory.NewDriver(), nil

	case config.StorageSQLite, "":
		path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath, configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		logger.Debug("using SQLite storage", zap.String("path", path))
		return driver, nil

	case config.StoragePostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("storage.postgres_dsn is required for postgres storage")
		}
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		logger.Debug("using PostgreSQL storage")
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Storage.Provider)
	}
}

// NewPublisher opens the event publisher selected by cfg.EventStream.Provider.
func NewPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	switch cfg.EventStream.Provider {
	case config.EventStreamNone, "":
		return nop.NewPublisher(), nil

	case config.EventStreamKafka:
		pub, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.EventStream.BrokerList(),
			Topic:   cfg.EventStream.Topic,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("publishing run events to kafka",
			zap.Strings("brokers", cfg.EventStream.BrokerList()),
			zap.String("topic", cfg.EventStream.Topic),
		)
		return pub, nil

	default:
		return nil, fmt.Errorf("unknown eventstream provider: %q", cfg.EventStream.Provider)
	}
}
