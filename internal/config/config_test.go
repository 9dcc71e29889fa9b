package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "nope.yaml"), dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != dir {
		t.Fatalf("expected data dir %q, got %q", dir, cfg.DataDir)
	}
	if cfg.DefaultWorkMinutes != 25 {
		t.Fatalf("expected 25 default minutes, got %d", cfg.DefaultWorkMinutes)
	}
	tick, err := cfg.Tick()
	if err != nil || tick != time.Second {
		t.Fatalf("expected 1s tick, got %s (%v)", tick, err)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	body := "log_level: debug\ntick_interval: 250ms\nmirror:\n  file:\n    path: /tmp/x.json\n    watch: true\n  sheets:\n    spreadsheet_id: from-file\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DEEPWORK_SHEET_ID", "from-env")

	cfg, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %q", cfg.LogLevel)
	}
	if !cfg.Mirror.File.Watch || cfg.Mirror.File.Path != "/tmp/x.json" {
		t.Fatalf("unexpected file mirror %+v", cfg.Mirror.File)
	}
	if cfg.Mirror.Sheets.SpreadsheetID != "from-env" {
		t.Fatalf("expected env override, got %q", cfg.Mirror.Sheets.SpreadsheetID)
	}
	tick, _ := cfg.Tick()
	if tick != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %s", tick)
	}
}

func TestValidateRejectsBadTick(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.TickInterval = "5s"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for slow tick interval")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", ConfigFileName)
	cfg := Default(dir)
	cfg.Serve.Addr = "127.0.0.1:9999"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path, dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Serve.Addr != "127.0.0.1:9999" {
		t.Fatalf("expected saved addr, got %q", loaded.Serve.Addr)
	}
}
