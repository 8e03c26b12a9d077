// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/resonance-meter/combat-core/internal/config"
	"github.com/resonance-meter/combat-core/internal/decode"
	"github.com/resonance-meter/combat-core/internal/logging"
	"github.com/resonance-meter/combat-core/internal/observe"
	"github.com/resonance-meter/combat-core/internal/pipeline"
	"github.com/resonance-meter/combat-core/internal/reftables"
)

func main() {
	configPath := flag.String("config", "/etc/combat-core/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.FilePath)
	defer closeLogger.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	tables := reftables.NewBundle(cfg.RefTables.Roots, logger)
	if cfg.RefTables.ReloadEnabled {
		if err := tables.StartReload(cfg.RefTables.ReloadSchedule); err != nil {
			logger.Error("failed to schedule reference-table reload", "error", err)
			os.Exit(1)
		}
		defer tables.StopReload(context.Background())
	}

	// queue is the hand-off point between per-flow decode goroutines (owned
	// by whatever capture front-end feeds pipeline.Flow) and the single
	// consumer below, which resolves decoded events against the reference
	// tables. A capture front-end is out of this repo's scope; this queue
	// and handler are the integration point it attaches to.
	queue := pipeline.NewEventQueue()
	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		queue.Run(newEventHandler(logger, tables))
	}()

	monitor := observe.NewQueueMonitor(logger, cfg.Monitoring.SampleInterval, func() int64 {
		return queue.Depth()
	}, cfg.Monitoring.QueueWarnThreshold)
	monitor.Start()
	defer monitor.Stop()

	logger.Info("combat-core started",
		"reference_table_roots", cfg.RefTables.Roots,
		"capture_rate_limit_bytes_per_sec", cfg.Capture.BytesPerSecRaw,
	)

	<-ctx.Done()
	queue.Close()
	<-queueDone

	logger.Info("combat-core stopped")
}
