// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package observe periodically samples host resource usage and the
// decoding pipeline's own queue-depth counters, so an operator (or the
// pipeline itself) can see whether the machine or a flow is falling
// behind.
package observe

import (
	"log/slog"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostStats holds a single sample of host resource usage.
type HostStats struct {
	CPUPercent    float64
	MemoryPercent float64
	LoadAverage   float64
}

// QueueDepthFunc returns the current advisory depth of the downstream
// event queue, summed across all active flows.
type QueueDepthFunc func() int64

// QueueMonitor periodically samples host resource usage alongside the
// pipeline's queue-depth counters, logging a warning when the queue depth
// crosses its configured threshold. Host usage is only recorded; it has no
// warning threshold.
type QueueMonitor struct {
	logger             *slog.Logger
	interval           time.Duration
	queueDepth         QueueDepthFunc
	queueWarnThreshold int64

	close chan struct{}
	wg    sync.WaitGroup

	mu    sync.RWMutex
	stats HostStats
}

// NewQueueMonitor creates a QueueMonitor. interval<=0 defaults to 15s.
func NewQueueMonitor(logger *slog.Logger, interval time.Duration, queueDepth QueueDepthFunc, queueWarnThreshold int64) *QueueMonitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &QueueMonitor{
		logger:             logger.With("component", "queue_monitor"),
		interval:           interval,
		queueDepth:         queueDepth,
		queueWarnThreshold: queueWarnThreshold,
		close:              make(chan struct{}),
	}
}

// Start begins periodic sampling in a background goroutine.
func (m *QueueMonitor) Start() {
	m.wg.Add(1)
	go m.run()
}

// Stop halts sampling and waits for the background goroutine to exit.
func (m *QueueMonitor) Stop() {
	close(m.close)
	m.wg.Wait()
}

// Stats returns the most recently collected host stats.
func (m *QueueMonitor) Stats() HostStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

func (m *QueueMonitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.sample()

	for {
		select {
		case <-m.close:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

func (m *QueueMonitor) sample() {
	stats := HostStats{}

	if percentage, err := cpu.Percent(0, false); err == nil && len(percentage) > 0 {
		stats.CPUPercent = percentage[0]
	} else {
		m.logger.Debug("failed to sample cpu usage", "error", err)
	}

	if v, err := mem.VirtualMemory(); err == nil {
		stats.MemoryPercent = v.UsedPercent
	} else {
		m.logger.Debug("failed to sample memory usage", "error", err)
	}

	if l, err := load.Avg(); err == nil {
		stats.LoadAverage = l.Load1
	} else {
		m.logger.Debug("failed to sample load average", "error", err)
	}

	m.mu.Lock()
	m.stats = stats
	m.mu.Unlock()

	if m.queueDepth == nil {
		return
	}
	if depth := m.queueDepth(); m.queueWarnThreshold > 0 && depth >= m.queueWarnThreshold {
		m.logger.Warn("downstream queue depth crossed warning threshold",
			"depth", depth, "threshold", m.queueWarnThreshold)
	}
}
