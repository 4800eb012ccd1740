package mock

import (
	"net"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Server is the mock agent server.
type Server struct {
	config Config
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new mock agent server.
func NewServer(config Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		logger: logger,
		app:    app,
	}

	app.Get("/ok", s.handleOK)
	app.Post("/runs/stream", s.handleRunStream)

	return s
}

// Run starts the mock server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock agent server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Serve starts the mock server on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("starting mock agent server",
		zap.String("listen", ln.Addr().String()),
	)
	return s.app.Listener(ln)
}

// Shutdown gracefully shuts down the mock server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
