package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/tcpsum/internal/initiator"
)

// EnvConfigPath names an optional TOML file overlaid on the defaults.
const EnvConfigPath = "TCPSUM_INITIATOR_CONFIG"

type fileConfig struct {
	Addr        string `toml:"addr"`
	Name        string `toml:"name"`
	DialTimeout string `toml:"dial_timeout"`
	ReadTimeout string `toml:"read_timeout"`
}

func loadClientConfig(path string) (initiator.Config, error) {
	cfg := initiator.DefaultConfig()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return initiator.Config{}, fmt.Errorf("load initiator config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return initiator.Config{}, fmt.Errorf("load initiator config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("name") {
		cfg.Name = strings.TrimSpace(raw.Name)
	}
	if meta.IsDefined("dial_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.DialTimeout))
		if err != nil {
			return initiator.Config{}, fmt.Errorf("parse dial_timeout: %w", err)
		}
		cfg.DialTimeout = d
	}
	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return initiator.Config{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return initiator.Config{}, fmt.Errorf("load initiator config: %w", err)
	}
	return cfg, nil
}
