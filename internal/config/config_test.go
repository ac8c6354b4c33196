package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subapp.yaml")
	data := []byte(`
logging:
  level: debug
  format: json
admin:
  addr: "127.0.0.1:9901"
runtime:
  kind: cron
  cron_spec: "@every 30s"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Admin.Addr != "127.0.0.1:9901" {
		t.Errorf("admin addr = %q", cfg.Admin.Addr)
	}
	// Unset YAML fields keep their defaults.
	if cfg.Admin.RequestsPerSecond != 10 {
		t.Errorf("rps = %d, want default 10", cfg.Admin.RequestsPerSecond)
	}
	if cfg.Runtime.Kind != RuntimeCron || cfg.Runtime.CronSpec != "@every 30s" {
		t.Errorf("runtime = %+v", cfg.Runtime)
	}
}

func TestLoad_InvalidRuntimeKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subapp.yaml")
	if err := os.WriteFile(path, []byte("runtime:\n  kind: quantum\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unknown runtime kind")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Runtime.Kind != RuntimeGoroutine {
		t.Errorf("default runtime = %q", cfg.Runtime.Kind)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SUBAPP_LOG_LEVEL", "error")
	t.Setenv("SUBAPP_ADMIN_RPS", "99")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("level = %q, want env override", cfg.Logging.Level)
	}
	if cfg.Admin.RequestsPerSecond != 99 {
		t.Errorf("rps = %d, want 99", cfg.Admin.RequestsPerSecond)
	}
	// Untouched fields survive.
	if cfg.Logging.Format != "text" {
		t.Errorf("format = %q, want text", cfg.Logging.Format)
	}
}

func TestApplyEnv_CleanEnvironment(t *testing.T) {
	for _, key := range []string{
		"SUBAPP_LOG_LEVEL", "SUBAPP_LOG_FORMAT", "SUBAPP_LOG_OUTPUT",
		"SUBAPP_ADMIN_ADDR", "SUBAPP_ADMIN_RPS", "SUBAPP_ADMIN_BURST",
		"SUBAPP_RUNTIME", "SUBAPP_RUNTIME_CRON_SPEC",
	} {
		t.Setenv(key, "") // register restore
		os.Unsetenv(key)
	}

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv with no variables set: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("config changed without env overrides: %+v", cfg)
	}
}
