package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/console-repair-tools/noruart/pkg/errdb"
)

// Config is the resolved tool configuration: file values overlaid on
// defaults, with flags applied on top by the root command.
type Config struct {
	Port           string
	Baud           int
	CommandTimeout time.Duration
	DatabasePath   string
	RemoteURL      string
	Offline        bool
}

type fileConfig struct {
	Port           string `toml:"port"`
	Baud           int    `toml:"baud"`
	CommandTimeout string `toml:"command_timeout"`
	DatabasePath   string `toml:"database_path"`
	RemoteURL      string `toml:"remote_url"`
	Offline        bool   `toml:"offline"`
}

func defaultConfig() Config {
	return Config{
		Baud:           115200,
		CommandTimeout: 5 * time.Second,
		DatabasePath:   defaultDatabasePath(),
		RemoteURL:      errdb.DefaultRemoteURL,
	}
}

func defaultDatabasePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "error_codes.xml"
	}
	return filepath.Join(dir, "noruart", "error_codes.xml")
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		if raw.Baud <= 0 {
			return Config{}, fmt.Errorf("config baud must be positive, got %d", raw.Baud)
		}
		cfg.Baud = raw.Baud
	}
	if meta.IsDefined("command_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.CommandTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse command_timeout: %w", err)
		}
		if d <= 0 {
			return Config{}, fmt.Errorf("command_timeout must be positive, got %s", d)
		}
		cfg.CommandTimeout = d
	}
	if meta.IsDefined("database_path") {
		cfg.DatabasePath = raw.DatabasePath
	}
	if meta.IsDefined("remote_url") {
		cfg.RemoteURL = strings.TrimSpace(raw.RemoteURL)
	}
	if meta.IsDefined("offline") {
		cfg.Offline = raw.Offline
	}
	return cfg, nil
}
