package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golfwear-extractor/internal/config"
)

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	level := settings.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	port := "8080"
	if envPort := os.Getenv("API_PORT"); envPort != "" {
		port = envPort
	}

	server := NewServer(settings, logger)
	logger.Infof("Starting API server on port %s", port)
	logger.Info("Available endpoints:")
	logger.Info("  POST /assemble - Normalize, title and assemble one raw record")
	logger.Info("  POST /title    - Generate and validate a title")
	logger.Info("  GET  /health   - Health check")

	if err := server.Router().Run(":" + port); err != nil {
		logger.Fatalf("API server stopped: %v", err)
	}
}
