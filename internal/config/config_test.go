package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	// Run from a directory with no config files around
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 2323 {
		t.Errorf("Expected default port 2323, got %d", cfg.Server.Port)
	}
	if cfg.Match.IdleTTL.Std() != 30*time.Minute {
		t.Errorf("Expected 30m idle TTL, got %v", cfg.Match.IdleTTL.Std())
	}
	if cfg.Bot.Name != "Castaway" {
		t.Errorf("Expected default bot name, got %q", cfg.Bot.Name)
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "islands.yaml")
	body := []byte("server:\n  port: 9999\n  idle_timeout: 5m\nbot:\n  name: Crusoe\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Server.IdleTimeout.Std() != 5*time.Minute {
		t.Errorf("Expected 5m idle timeout, got %v", cfg.Server.IdleTimeout.Std())
	}
	if cfg.Bot.Name != "Crusoe" {
		t.Errorf("Expected bot name Crusoe, got %q", cfg.Bot.Name)
	}
	// Fields the file does not mention keep their defaults
	if cfg.Match.IdleTTL.Std() != 30*time.Minute {
		t.Errorf("Expected default idle TTL for partial file, got %v", cfg.Match.IdleTTL.Std())
	}
	if cfg.Storage.Path != "~/.islands/matches.db" {
		t.Errorf("Expected default storage path for partial file, got %q", cfg.Storage.Path)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Explicit missing path should fail")
	}
}

func TestLoadBadYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Unparseable config should fail")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ISLANDS_SERVER_PORT", "4422")
	t.Setenv("ISLANDS_BOT_DELAY", "1s")
	t.Setenv("ISLANDS_DB_PATH", "/tmp/elsewhere.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 4422 {
		t.Errorf("Expected env port 4422, got %d", cfg.Server.Port)
	}
	if cfg.Bot.Delay.Std() != time.Second {
		t.Errorf("Expected env delay 1s, got %v", cfg.Bot.Delay.Std())
	}
	if cfg.Storage.Path != "/tmp/elsewhere.db" {
		t.Errorf("Expected env db path, got %q", cfg.Storage.Path)
	}
	// Untouched values keep their file defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host, got %q", cfg.Server.Host)
	}
}

func TestDurationParsing(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Expected 90s, got %v", d.Std())
	}
	if err := d.UnmarshalText([]byte("not-a-duration")); err == nil {
		t.Error("Garbage duration should fail")
	}
}
