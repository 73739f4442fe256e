package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/statebrowser/internal/browser"
	"github.com/GriffinCanCode/statebrowser/internal/config"
	"github.com/GriffinCanCode/statebrowser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statebrowser/internal/logging"
	"github.com/GriffinCanCode/statebrowser/internal/script"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	scriptPath := flag.String("script", "", "YAML browsing script to run")
	configPath := flag.String("config", "", "Optional .toml or .yaml config file")
	verbose := flag.Bool("v", false, "Debug logging")
	dumpMetrics := flag.Bool("metrics", false, "Print collected metrics to stderr on exit")
	flag.Parse()

	if *scriptPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadOrDefault()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if *verbose {
		logCfg.Level = "debug"
	}
	logger := logging.MustNew(logCfg)
	defer logger.Sync()

	s, err := script.Load(*scriptPath)
	if err != nil {
		logger.Fatal("failed to load script", zap.Error(err))
	}

	var metrics *monitoring.Metrics
	reg := prometheus.NewRegistry()
	if *dumpMetrics {
		metrics = monitoring.NewMetrics(reg)
	}
	b, err := browser.NewFromConfig(cfg, logger, metrics)
	if err != nil {
		logger.Fatal("failed to create browser", zap.Error(err))
	}

	// Cancel in-flight requests on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("running script",
		zap.String("name", s.Name),
		zap.Int("steps", len(s.Steps)),
		zap.String("session", b.ID()))

	runErr := script.Run(ctx, b, s)
	if *dumpMetrics {
		if err := monitoring.WriteText(os.Stderr, reg); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}
	if runErr != nil {
		logger.Error("script failed", zap.String("url", b.URL()), zap.Error(runErr))
		os.Exit(1)
	}

	fmt.Println(b.URL())
	if p := b.Page(); p != nil && p.Title() != "" {
		fmt.Println(p.Title())
	}
}
