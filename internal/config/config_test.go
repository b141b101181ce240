package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if cfg.RowsPerHour != DefaultRowsPerHour || cfg.Keys.Quit != "q" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if !strings.Contains(string(data), "rows_per_hour") {
		t.Fatalf("written config missing rows_per_hour:\n%s", data)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again != cfg {
		t.Fatalf("reload differs:\n%+v\n%+v", again, cfg)
	}
}

func TestLoadOrCreateFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
rows_per_hour = 0
fit = true
log_level = "debug"

[keys]
quit = "x"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if !cfg.Fit || cfg.LogLevel != "debug" || cfg.Keys.Quit != "x" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.RowsPerHour != DefaultRowsPerHour {
		t.Fatalf("rows_per_hour = %d, want default", cfg.RowsPerHour)
	}
	if cfg.Keys.Add != "a" || cfg.SVG.Conflict == "" {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
}

func TestLoadOrCreateRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("rows_per_hour = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestResolveConfigPathHonoursEnv(t *testing.T) {
	t.Setenv("DAYPLAN_CONFIG", "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Fatalf("ResolveConfigPath = %q", got)
	}
	t.Setenv("DAYPLAN_CONFIG", "")
	if got := ResolveConfigPath(); !strings.HasSuffix(got, filepath.Join("dayplan", DefaultConfigFileName)) {
		t.Fatalf("ResolveConfigPath = %q", got)
	}
}
