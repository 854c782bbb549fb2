package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/config"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/db"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/pagecount"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/rabbitmq"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/repository"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/router"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/service"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/storage"
)

// Server represents the HTTP server and the kiosk's background workers.
type Server struct {
	config          *config.GlobalConfig
	database        *db.DB
	publisher       *rabbitmq.AMQPPublisher
	kiosk           *service.KioskService
	http            *http.Server
	sweepDone       chan struct{}
	shutdownHandler ShutdownHandlerInterface
}

// NewServer creates a new server instance and wires the kiosk core:
// audit database, file storage, page counter, optional event publisher.
func NewServer(cfg *config.GlobalConfig) (*Server, error) {
	database, err := db.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	files, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to prepare upload storage: %w", err)
	}

	var publisher *rabbitmq.AMQPPublisher
	var events rabbitmq.Publisher
	if url := cfg.AMQPURL(); url != "" {
		publisher, err = rabbitmq.NewAMQPPublisher(url)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		events = publisher
	}

	audit := repository.NewAuditRepository(database)
	kiosk := service.NewKioskService(*cfg, files, pagecount.NewFileCounter(), audit, events)

	server := &Server{
		config:    cfg,
		database:  database,
		publisher: publisher,
		kiosk:     kiosk,
		sweepDone: make(chan struct{}),
	}

	// Create and assign shutdown handler
	server.shutdownHandler = NewShutdownHandler(server)

	return server, nil
}

// Run starts the server with graceful shutdown using ShutdownHandler
func (s *Server) Run() error {
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	s.startSweepGoroutine()
	serverDone := s.startServerGoroutine()

	return s.shutdownHandler.HandleShutdown(serverDone, osSignals)
}

// startServerGoroutine starts the HTTP server in a goroutine and returns a channel for errors
func (s *Server) startServerGoroutine() chan error {
	serverDone := make(chan error, 1)

	go func() {
		r := router.NewRouter(s.config, s.kiosk)
		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%s", s.config.GetHost(), s.config.GetPort()),
			Handler: r,
		}
		s.http = httpServer

		slog.Info("Starting kiosk backend",
			"host", s.config.GetHost(),
			"port", s.config.GetPort(),
			"printer_id", s.config.PrinterID)

		serverDone <- s.startServer()
	}()

	return serverDone
}

// startSweepGoroutine runs the periodic expiry sweep until shutdown.
func (s *Server) startSweepGoroutine() {
	ticker := time.NewTicker(s.config.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				if swept := s.kiosk.Sweep(now); swept > 0 {
					slog.Info("Expiry sweep reclaimed sessions", "count", swept)
				}
			case <-s.sweepDone:
				return
			}
		}
	}()
}

// startServer starts the HTTP server and handles errors
func (s *Server) startServer() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
