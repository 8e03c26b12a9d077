// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package config loads and validates the combat-core YAML configuration:
// logging, reference-table search roots and reload schedule, per-flow
// capture rate limit, and monitor sample interval and queue-depth warning
// threshold.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete combat-core configuration.
type Config struct {
	Logging    LoggingInfo    `yaml:"logging"`
	RefTables  RefTablesInfo  `yaml:"reference_tables"`
	Capture    CaptureInfo    `yaml:"capture"`
	Monitoring MonitoringInfo `yaml:"monitoring"`
}

// LoggingInfo configures the structured logger.
type LoggingInfo struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// RefTablesInfo configures where the reference tables are loaded from and
// how often they're reloaded.
type RefTablesInfo struct {
	Roots          []string `yaml:"roots"`
	ReloadSchedule string   `yaml:"reload_schedule"` // empty disables scheduled reload
	ReloadEnabled  bool     `yaml:"-"`                // derived in validate()
}

// CaptureInfo configures per-flow capture admission.
type CaptureInfo struct {
	BytesPerSecLimit string `yaml:"bytes_per_sec_limit"` // e.g. "8mb"; empty/"0" disables
	BytesPerSecRaw   int64  `yaml:"-"`
}

// MonitoringInfo configures the host/queue resource monitor.
type MonitoringInfo struct {
	SampleInterval     time.Duration `yaml:"sample_interval"`      // default: 15s
	QueueWarnThreshold int64         `yaml:"queue_warn_threshold"` // default: 10000 events
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if len(c.RefTables.Roots) == 0 {
		c.RefTables.Roots = []string{"."}
	}
	c.RefTables.ReloadEnabled = c.RefTables.ReloadSchedule != ""

	if c.Capture.BytesPerSecLimit == "" || c.Capture.BytesPerSecLimit == "0" {
		c.Capture.BytesPerSecRaw = 0
	} else {
		parsed, err := ParseByteSize(c.Capture.BytesPerSecLimit)
		if err != nil {
			return fmt.Errorf("capture.bytes_per_sec_limit: %w", err)
		}
		if parsed <= 0 {
			return fmt.Errorf("capture.bytes_per_sec_limit must be > 0 or \"0\" to disable, got %s", c.Capture.BytesPerSecLimit)
		}
		c.Capture.BytesPerSecRaw = parsed
	}

	if c.Monitoring.SampleInterval <= 0 {
		c.Monitoring.SampleInterval = 15 * time.Second
	}
	if c.Monitoring.QueueWarnThreshold <= 0 {
		c.Monitoring.QueueWarnThreshold = 10000
	}

	return nil
}

// ParseByteSize converts human-readable sizes like "256mb", "1gb" to bytes.
func ParseByteSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	type suffix struct {
		s string
		m int64
	}
	suffixes := []suffix{
		{"gb", 1024 * 1024 * 1024},
		{"mb", 1024 * 1024},
		{"kb", 1024},
		{"b", 1},
	}

	for _, sfx := range suffixes {
		if strings.HasSuffix(s, sfx.s) {
			numStr := strings.TrimSuffix(s, sfx.s)
			num, err := strconv.ParseInt(numStr, 10, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid number %q: %w", numStr, err)
			}
			return num * sfx.m, nil
		}
	}

	num, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown size format %q", s)
	}
	return num, nil
}
