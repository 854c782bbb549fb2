package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/MasterSinister2006/securepaytoprint-backend/logger"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/config"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/server"

	_ "github.com/swaggo/files"
	_ "github.com/swaggo/gin-swagger"
)

// @title SecurePayToPrint API
// @version 1.0
// @description Pay-to-print kiosk backend: upload a document, pay for its pages, collect the prints.

// @contact.name   SecurePayToPrint Team
// @contact.url    https://github.com/MasterSinister2006/securepaytoprint-backend

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	setupLogging()
	logger.Init()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := server.NewServer(&cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

func setupLogging() {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(slogger)
}
