// Package config loads deployment configuration from a YAML file with
// environment variable overrides. Database connectivity stays on env vars
// and is read by the server mains directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/billyproject/billy/consts"
)

type Config struct {
	Processor ProcessorConfig `yaml:"processor"`
	API       APIConfig       `yaml:"api"`
	Poller    PollerConfig    `yaml:"poller"`
	Audit     AuditConfig     `yaml:"audit"`
}

type ProcessorConfig struct {
	Name         string `yaml:"name"`
	APIBase      string `yaml:"api_base"`
	TimeoutInSec int    `yaml:"timeout_in_sec"`
}

func (c ProcessorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutInSec) * time.Second
}

type APIConfig struct {
	// DisplayCallbackKey gates whether a company's callback key is ever
	// included in API responses. Withheld by default; enable only for
	// controlled integration testing.
	DisplayCallbackKey bool `yaml:"display_callback_key"`
	PrettyJSON         bool `yaml:"pretty_json"`
}

type PollerConfig struct {
	IntervalInSec int `yaml:"interval_in_sec"`
	MinAgeInSec   int `yaml:"min_age_in_sec"`
	Workers       int `yaml:"workers"`
	BatchSize     int `yaml:"batch_size"`
}

func (c PollerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalInSec) * time.Second
}

type AuditConfig struct {
	Path string `yaml:"path"`
}

// Load reads the YAML file at path (skipped when empty), applies BILLY_*
// environment overrides, and validates. A missing or unknown processor name
// is a configuration error and must abort startup.
func Load(path string) (Config, error) {
	cfg := Config{
		Processor: ProcessorConfig{
			TimeoutInSec: consts.DefaultProcessorTimeoutInSec,
		},
		Poller: PollerConfig{
			IntervalInSec: consts.DefaultPollIntervalInSec,
			MinAgeInSec:   consts.DefaultPollMinAgeInSec,
			Workers:       consts.DefaultWorkerNumber,
			BatchSize:     consts.DefaultPollBatchSize,
		},
		Audit: AuditConfig{
			Path: "billy_audit.db",
		},
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Processor.Name == "" {
		return Config{}, fmt.Errorf("processor.name is required")
	}
	if cfg.Poller.Workers <= 0 {
		cfg.Poller.Workers = consts.DefaultWorkerNumber
	}
	if cfg.Poller.BatchSize <= 0 {
		cfg.Poller.BatchSize = consts.DefaultPollBatchSize
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BILLY_PROCESSOR_NAME"); v != "" {
		cfg.Processor.Name = v
	}
	if v := os.Getenv("BILLY_PROCESSOR_API_BASE"); v != "" {
		cfg.Processor.APIBase = v
	}
	if v := os.Getenv("BILLY_PROCESSOR_TIMEOUT_IN_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Processor.TimeoutInSec = n
		}
	}
	if v := os.Getenv("BILLY_DISPLAY_CALLBACK_KEY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.API.DisplayCallbackKey = b
		}
	}
	if v := os.Getenv("BILLY_PRETTY_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.API.PrettyJSON = b
		}
	}
	if v := os.Getenv("BILLY_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
}
