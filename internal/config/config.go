package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the user-editable settings read from config.yaml.
type Config struct {
	DataDir            string       `yaml:"data_dir"`
	LogLevel           string       `yaml:"log_level"`
	TickInterval       string       `yaml:"tick_interval"`
	DefaultWorkMinutes int          `yaml:"default_work_minutes"`
	Mirror             MirrorConfig `yaml:"mirror"`
	Serve              ServeConfig  `yaml:"serve"`
}

// MirrorConfig configures the optional copies kept next to the local database.
type MirrorConfig struct {
	File   FileMirrorConfig   `yaml:"file"`
	Sheets SheetsMirrorConfig `yaml:"sheets"`
}

type FileMirrorConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type SheetsMirrorConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	// TokenEnv names the environment variable holding an OAuth access token.
	TokenEnv string `yaml:"token_env"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the configuration used when no file exists.
func Default(dataDir string) Config {
	return Config{
		DataDir:            dataDir,
		LogLevel:           "info",
		TickInterval:       TickInterval.String(),
		DefaultWorkMinutes: int(DefaultWorkDuration / time.Minute),
		Mirror: MirrorConfig{
			Sheets: SheetsMirrorConfig{TokenEnv: "DEEPWORK_SHEETS_TOKEN"},
		},
		Serve: ServeConfig{Addr: "127.0.0.1:8420"},
	}
}

// Load reads path on top of Default(dataDir). A missing file is not an error.
func Load(path, dataDir string) (Config, error) {
	cfg := Default(dataDir)
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("DEEPWORK_DATA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("DEEPWORK_LOG_LEVEL")); v != "" {
		c.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("DEEPWORK_SHEET_ID")); v != "" {
		c.Mirror.Sheets.SpreadsheetID = v
	}
}

// Validate rejects values the application cannot run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("config: data_dir is empty")
	}
	if _, err := c.Tick(); err != nil {
		return err
	}
	if c.DefaultWorkMinutes < 0 || c.DefaultWorkMinutes > MaxSessionMinutes {
		return fmt.Errorf("config: default_work_minutes must be between 0 and %d", MaxSessionMinutes)
	}
	return nil
}

// Tick parses TickInterval; an empty value means the default.
func (c Config) Tick() (time.Duration, error) {
	if strings.TrimSpace(c.TickInterval) == "" {
		return TickInterval, nil
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("config: tick_interval: %w", err)
	}
	if d < 100*time.Millisecond || d > time.Second {
		return 0, fmt.Errorf("config: tick_interval %s outside 100ms..1s", d)
	}
	return d, nil
}

// SheetsToken returns the access token named by Mirror.Sheets.TokenEnv.
func (c Config) SheetsToken() string {
	if c.Mirror.Sheets.TokenEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.Mirror.Sheets.TokenEnv))
}

func (c Config) DBPath() string  { return filepath.Join(c.DataDir, DBFileName) }
func (c Config) LogPath() string { return filepath.Join(c.DataDir, LogFileName) }

// Save writes the configuration as YAML, creating the parent directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
