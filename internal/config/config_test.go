package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "searchusage.yaml", "threads: 4\nmax_bytes: 123\ncase_insensitive: true\nignore_dirs: [node_modules, .venv]\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 4 {
		t.Fatalf("expected threads=4, got %#v", cfg.Threads)
	}
	if cfg.MaxBytes == nil || *cfg.MaxBytes != 123 {
		t.Fatalf("expected max_bytes=123, got %#v", cfg.MaxBytes)
	}
	if cfg.CaseInsensitive == nil || !*cfg.CaseInsensitive {
		t.Fatalf("expected case_insensitive=true")
	}
	if len(cfg.IgnoreDirs) != 2 || cfg.IgnoreDirs[0] != "node_modules" || cfg.IgnoreDirs[1] != ".venv" {
		t.Fatalf("unexpected ignore_dirs: %#v", cfg.IgnoreDirs)
	}
	if cfg.SkipBinary != nil {
		t.Fatalf("expected unset skip_binary to stay nil")
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "bad.yml", "threads: [not, a, number\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "searchusage.yaml", "threads: 1\n")
	writeTemp(t, dir, ".searchusage.yaml", "threads: 7\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 7 {
		t.Fatalf("expected threads=7 from .searchusage.yaml, got %#v", cfg.Threads)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadLocal(dir); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "searchusage")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "threads: 9\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if cfg.Threads == nil || *cfg.Threads != 9 {
		t.Fatalf("expected threads=9 from global config, got %#v", cfg.Threads)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".searchusage.yml")
	yes := true
	if err := Write(p, FileConfig{IgnoreDirs: []string{"vendor"}, SkipBinary: &yes}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.SkipBinary == nil || !*cfg.SkipBinary || len(cfg.IgnoreDirs) != 1 {
		t.Fatalf("unexpected round trip: %#v", cfg)
	}
	if cfg.Threads != nil {
		t.Fatalf("omitted field came back set: %#v", cfg.Threads)
	}
}
