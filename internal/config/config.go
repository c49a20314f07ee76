// Package config loads the YAML configuration shared by the server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/toy-schematic/internal/logging"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Store     StoreConfig     `yaml:"store" json:"store"`
	Log       LogConfig       `yaml:"log" json:"log"`
	Workspace WorkspaceConfig `yaml:"workspace" json:"workspace"`
	Analysis  AnalysisConfig  `yaml:"analysis" json:"analysis"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr" validate:"required"`
	Mode            string        `yaml:"mode" json:"mode" validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gt=0"`
}

type StoreConfig struct {
	Path           string        `yaml:"path" json:"path" validate:"required_unless=InMemory true"`
	InMemory       bool          `yaml:"in_memory" json:"in_memory"`
	SyncWrites     bool          `yaml:"sync_writes" json:"sync_writes"`
	GCInterval     time.Duration `yaml:"gc_interval" json:"gc_interval" validate:"gte=0"`
	GCDiscardRatio float64       `yaml:"gc_discard_ratio" json:"gc_discard_ratio" validate:"gt=0,lt=1"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json" json:"json"`
}

type WorkspaceConfig struct {
	// 0 keeps every snapshot. The whole history is persisted with each
	// edit, so the default is bounded.
	HistoryLimit int `yaml:"history_limit" json:"history_limit" validate:"gte=0"`
}

// AnalysisConfig holds the sweep used when a request does not specify one.
type AnalysisConfig struct {
	Sweep  string  `yaml:"sweep" json:"sweep" validate:"oneof=DEC OCT LIN"`
	Points int     `yaml:"points" json:"points" validate:"gte=2"`
	FStart float64 `yaml:"fstart" json:"fstart" validate:"gt=0"`
	FStop  float64 `yaml:"fstop" json:"fstop" validate:"gtfield=FStart"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{
			Path:           "./data/designs",
			GCInterval:     5 * time.Minute,
			GCDiscardRatio: 0.5,
		},
		Log: LogConfig{
			Level: "info",
		},
		Workspace: WorkspaceConfig{
			HistoryLimit: 100,
		},
		Analysis: AnalysisConfig{
			Sweep:  "DEC",
			Points: 20,
			FStart: 1,
			FStop:  1e6,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New()

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// Logging converts the log section into a logging.Config.
func (c Config) Logging() (logging.Config, error) {
	lvl, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, err
	}

	cfg := logging.DefaultConfig()
	cfg.Level = lvl
	cfg.JSON = c.Log.JSON
	return cfg, nil
}
