package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFullConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `
theme: latte
tab_width: 8
log_level: debug
scan_roots:
  - ~/src
  - ~/notes
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Theme != "latte" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "latte")
	}
	if cfg.TabWidth != 8 {
		t.Errorf("TabWidth = %d, want 8", cfg.TabWidth)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if len(cfg.ScanRoots) != 2 || cfg.ScanRoots[0] != "~/src" {
		t.Errorf("ScanRoots = %v, want [~/src ~/notes]", cfg.ScanRoots)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v, want nil for missing file", err)
	}

	want := DefaultConfig()
	if cfg.Theme != want.Theme {
		t.Errorf("Theme = %q, want %q", cfg.Theme, want.Theme)
	}
	if cfg.TabWidth != want.TabWidth {
		t.Errorf("TabWidth = %d, want %d", cfg.TabWidth, want.TabWidth)
	}
}

func TestLoadFrom_MalformedYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Error("LoadFrom() expected error for malformed YAML")
	}
	// Still returns a usable default config
	if cfg.Theme != "mocha" {
		t.Errorf("Theme = %q, want default %q", cfg.Theme, "mocha")
	}
}

func TestLoadFromDir(t *testing.T) {
	tempDir := t.TempDir()
	content := []byte("theme: frappe\n")
	if err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tempDir)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Theme != "frappe" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "frappe")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Theme != "mocha" {
		t.Errorf("Theme = %q, want %q", cfg.Theme, "mocha")
	}
	if cfg.TabWidth != 4 {
		t.Errorf("TabWidth = %d, want 4", cfg.TabWidth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ScanDepth != 6 {
		t.Errorf("ScanDepth = %d, want 6", cfg.ScanDepth)
	}
}

func TestDefaultConfig_WebLoopback(t *testing.T) {
	cfg := DefaultConfig()

	// Loopback bind plus an ephemeral port keeps the API local-only.
	if cfg.Web.Bind != "127.0.0.1" {
		t.Errorf("Web.Bind = %q, want %q", cfg.Web.Bind, "127.0.0.1")
	}
	if cfg.Web.Port != 0 {
		t.Errorf("Web.Port = %d, want 0", cfg.Web.Port)
	}
}

func TestLoadFrom_WebSection(t *testing.T) {
	load := func(t *testing.T, content string) Config {
		t.Helper()
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom() error = %v", err)
		}
		return cfg
	}

	cfg := load(t, "web:\n  port: 8080\n  bind: 0.0.0.0\n")
	if cfg.Web.Bind != "0.0.0.0" || cfg.Web.Port != 8080 {
		t.Errorf("web section = %s:%d, want 0.0.0.0:8080", cfg.Web.Bind, cfg.Web.Port)
	}

	cfg = load(t, "theme: latte\n")
	if cfg.Web.Bind != "127.0.0.1" || cfg.Web.Port != 0 {
		t.Errorf("absent web section = %s:%d, want the 127.0.0.1:0 defaults", cfg.Web.Bind, cfg.Web.Port)
	}
}

func TestLoadFrom_NormalizesBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name:    "zero tab width",
			content: "tab_width: 0\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.TabWidth != 4 {
					t.Errorf("TabWidth = %d, want 4", cfg.TabWidth)
				}
			},
		},
		{
			name:    "negative tab width",
			content: "tab_width: -2\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.TabWidth != 4 {
					t.Errorf("TabWidth = %d, want 4", cfg.TabWidth)
				}
			},
		},
		{
			name:    "zero scan depth",
			content: "scan_depth: 0\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.ScanDepth != 6 {
					t.Errorf("ScanDepth = %d, want 6", cfg.ScanDepth)
				}
			},
		},
		{
			name:    "empty log level",
			content: "log_level: \"\"\n",
			check: func(t *testing.T, cfg Config) {
				if cfg.LogLevel != "info" {
					t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := LoadFrom(configPath)
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Theme = "macchiato"
	cfg.TabWidth = 2
	cfg.ScanRoots = []string{"/tmp/src"}

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 0600", perm)
	}

	got, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got.Theme != "macchiato" {
		t.Errorf("Theme = %q, want %q", got.Theme, "macchiato")
	}
	if got.TabWidth != 2 {
		t.Errorf("TabWidth = %d, want 2", got.TabWidth)
	}
	if len(got.ScanRoots) != 1 || got.ScanRoots[0] != "/tmp/src" {
		t.Errorf("ScanRoots = %v, want [/tmp/src]", got.ScanRoots)
	}
}
