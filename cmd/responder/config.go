package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tcpsum/internal/responder"
)

// EnvConfigPath names an optional TOML file overlaid on the defaults.
const EnvConfigPath = "TCPSUM_RESPONDER_CONFIG"

type fileConfig struct {
	Addr         string `toml:"addr"`
	Name         string `toml:"name"`
	Number       int    `toml:"number"`
	MinNumber    int    `toml:"min_number"`
	MaxNumber    int    `toml:"max_number"`
	Backlog      int    `toml:"backlog"`
	ReuseAddr    bool   `toml:"reuse_addr"`
	ReadTimeout  string `toml:"read_timeout"`
	WriteTimeout string `toml:"write_timeout"`
	MetricsAddr  string `toml:"metrics_addr"`
}

type serviceConfig struct {
	Responder   responder.Config
	MetricsAddr string
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{Responder: responder.DefaultConfig()}
}

// responder loader for TOML config with default overlay. An empty path keeps defaults.
func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load responder config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return serviceConfig{}, fmt.Errorf("load responder config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		cfg.Responder.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("name") {
		cfg.Responder.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("number") {
		cfg.Responder.Number = raw.Number
	}
	if meta.IsDefined("min_number") {
		cfg.Responder.MinNumber = raw.MinNumber
	}
	if meta.IsDefined("max_number") {
		cfg.Responder.MaxNumber = raw.MaxNumber
	}
	if meta.IsDefined("backlog") {
		cfg.Responder.Backlog = raw.Backlog
	}
	if meta.IsDefined("reuse_addr") {
		cfg.Responder.ReuseAddr = raw.ReuseAddr
	}
	if meta.IsDefined("read_timeout") {
		d, err := parseOptionalDuration(raw.ReadTimeout)
		if err != nil {
			return serviceConfig{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.Responder.ReadTimeout = d
	}
	if meta.IsDefined("write_timeout") {
		d, err := parseOptionalDuration(raw.WriteTimeout)
		if err != nil {
			return serviceConfig{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.Responder.WriteTimeout = d
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}

	if err := cfg.Responder.Validate(); err != nil {
		return serviceConfig{}, fmt.Errorf("load responder config: %w", err)
	}
	return cfg, nil
}

func parseOptionalDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}
