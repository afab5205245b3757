package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/richard-senior/goalclock/internal/config"
	"github.com/richard-senior/goalclock/internal/httpapi"
	"github.com/richard-senior/goalclock/internal/logger"
	"github.com/richard-senior/goalclock/pkg/server"
	"github.com/richard-senior/goalclock/pkg/tools"
)

func main() {
	// Configure logging
	logger.SetShowDateTime(true)

	settings, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	if level, err := logger.ParseLevel(settings.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if len(os.Args) > 1 && os.Args[1] == "serve-http" {
		runHTTP(settings)
		return
	}

	// stdout carries the protocol so logging goes to file before anything else is written
	if err := logger.SetLogOutput('f', settings.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.SetColour(false)
	defer logger.Close()

	logger.Info("Starting github.com/richard-senior/goalclock MCP server")
	if len(os.Args) > 1 {
		logger.Info("Command line arguments received:", len(os.Args)-1)
		for i, arg := range os.Args[1:] {
			logger.Debug(fmt.Sprintf("Argument %d:", i+1), arg)
		}
	}

	tools.Configure(settings)

	// Initialize the MCP server singleton
	s := server.GetInstance()

	if err := s.Start(); err != nil {
		logger.Error("Server error:", err)
		logger.Close()
		os.Exit(1)
	}

	logger.Info("MCP server shutting down")
}

func runHTTP(settings *config.Settings) {
	if err := logger.SetLogOutput('c', ""); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting goalclock HTTP API")
	logger.Info("Default line:", settings.DefaultLine)
	logger.Info("Default max goals:", settings.DefaultMaxGoals)

	if err := httpapi.ListenAndServe(ctx, settings); err != nil {
		logger.Error("HTTP server error:", err)
		os.Exit(1)
	}
	logger.Info("goalclock HTTP API stopped")
}
