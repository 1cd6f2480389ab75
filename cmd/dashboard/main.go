package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"crypto-forecast-dashboard/internal/dashboard"
	"crypto-forecast-dashboard/internal/history"
	"crypto-forecast-dashboard/internal/interfaces"
	"crypto-forecast-dashboard/internal/logger"
	"crypto-forecast-dashboard/internal/news"
	"crypto-forecast-dashboard/internal/predictor"
	"crypto-forecast-dashboard/internal/store"
	"crypto-forecast-dashboard/internal/trace"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	// Load configuration
	cfg := store.DefaultConfig()
	if *configPath != "" {
		loaded, err := store.LoadConfig(*configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Initialize logger
	if err := logger.Init(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize tracing (no-op unless LOG_TRACING_ENABLED=true)
	ctx := context.Background()
	if err := trace.Init(); err != nil {
		logger.Warn(ctx, "Tracing disabled", "error", err)
	}
	defer trace.Shutdown(ctx)

	timeout := time.Duration(cfg.Backend.TimeoutSeconds) * time.Second
	alpha := predictor.NewClient(cfg.Backend.BaseURL, predictor.Alpha, timeout)
	yahoo := predictor.NewClient(cfg.Backend.BaseURL, predictor.Yahoo, timeout)

	// The yahoo variant is the only one with a news endpoint; the scraper
	// covers the gap when it is down.
	newsSvc := news.NewService(yahoo, news.ServiceConfigFrom(cfg))

	var recorder interfaces.Recorder = history.NewNoopRecorder()
	if cfg.History.Enabled {
		rec, err := history.NewSQLiteRecorder(cfg.History.Path)
		if err != nil {
			fmt.Printf("Error opening prediction history: %v\n", err)
			os.Exit(1)
		}
		recorder = rec
	}
	defer recorder.Close()

	model := dashboard.New(cfg, dashboard.Deps{
		Alpha:    alpha,
		Yahoo:    yahoo,
		News:     newsSvc,
		Recorder: recorder,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running dashboard: %v\n", err)
		os.Exit(1)
	}
}
