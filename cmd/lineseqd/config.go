package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lineseq/sequencer"
	"github.com/katalvlaran/lineseq/transport/natsworker"
)

// daemonConfig is the YAML file layout of lineseqd.
type daemonConfig struct {
	Engine      sequencer.Config `yaml:"engine"`
	NATS        natsConfig       `yaml:"nats"`
	MetricsAddr string           `yaml:"metricsAddr"`
	LogLevel    string           `yaml:"logLevel"`
}

type natsConfig struct {
	URL               string `yaml:"url"`
	natsworker.Config `yaml:",inline"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		Engine:      sequencer.DefaultConfig(),
		NATS:        natsConfig{URL: "nats://127.0.0.1:4222"},
		MetricsAddr: ":9102",
		LogLevel:    "info",
	}
}

// loadDaemonConfig reads path over the defaults and validates the result.
func loadDaemonConfig(path string) (daemonConfig, error) {
	cfg := defaultDaemonConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	sequencer.SetDefaults(&cfg.Engine)
	if err := cfg.Engine.Validate(); err != nil {
		return cfg, err
	}
	natsworker.SetDefaults(&cfg.NATS.Config)
	if err := cfg.NATS.Config.Validate(); err != nil {
		return cfg, err
	}
	if cfg.NATS.URL == "" {
		return cfg, fmt.Errorf("nats.url is required")
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid logLevel %q: %w", s, err)
	}

	return lvl, nil
}
