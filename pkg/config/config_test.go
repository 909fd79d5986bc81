package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME at a temp dir and clears the env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(envConfigPath, "")
	t.Setenv(envPort, "")
	return home
}

func writeConfig(t *testing.T, home, body string) string {
	t.Helper()
	configDir := filepath.Join(home, ".motionsite")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func TestLoad_MissingFile_ReturnsDefault(t *testing.T) {
	isolate(t)

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path == "" {
		t.Fatalf("expected config path")
	}
	if got := cfg.Host(); got != DefaultHost {
		t.Fatalf("cfg.Host() = %q, want %q", got, DefaultHost)
	}
	if got := cfg.Port(); got != DefaultPort {
		t.Fatalf("cfg.Port() = %d, want %d", got, DefaultPort)
	}
	if got := cfg.ModeEnv(); got != "SERVER_SOFTWARE" {
		t.Fatalf("cfg.ModeEnv() = %q, want SERVER_SOFTWARE", got)
	}
	if got := cfg.DevServerURL(); got != "http://localhost:8081/" {
		t.Fatalf("cfg.DevServerURL() = %q", got)
	}
	if got := cfg.DistPath(); got != "/dist/" {
		t.Fatalf("cfg.DistPath() = %q", got)
	}
	if got := cfg.StaticPath(); got != "/static/" {
		t.Fatalf("cfg.StaticPath() = %q", got)
	}
}

func TestLoad_ParsesServerAndSite(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "server:\n  host: 0.0.0.0\n  port: 9090\nsite:\n  template_dir: /srv/site\n  dist_dir: /srv/dist\n  dev_server_url: http://127.0.0.1:3000/\n")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Host(); got != "0.0.0.0" {
		t.Fatalf("cfg.Host() = %q, want %q", got, "0.0.0.0")
	}
	if got := cfg.Port(); got != 9090 {
		t.Fatalf("cfg.Port() = %d, want %d", got, 9090)
	}
	dir, err := cfg.TemplateDir()
	if err != nil || dir != "/srv/site" {
		t.Fatalf("cfg.TemplateDir() = %q, %v", dir, err)
	}
	if got := cfg.DistDir(); got != "/srv/dist" {
		t.Fatalf("cfg.DistDir() = %q", got)
	}
	if got := cfg.StaticDir(); got != "" {
		t.Fatalf("cfg.StaticDir() = %q, want empty", got)
	}
	if got := cfg.DevServerURL(); got != "http://127.0.0.1:3000/" {
		t.Fatalf("cfg.DevServerURL() = %q", got)
	}
}

func TestLoad_PortEnvOverride(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "server:\n  port: 9090\n")
	t.Setenv(envPort, "7000")

	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Port(); got != 7000 {
		t.Fatalf("cfg.Port() = %d, want %d", got, 7000)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte("site:\n  dev_marker: Dev\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(envConfigPath, path)

	cfg, gotPath, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if gotPath != path {
		t.Fatalf("Load() path = %s, want %s", gotPath, path)
	}
	if got := cfg.DevMarker(); got != "Dev" {
		t.Fatalf("cfg.DevMarker() = %q, want Dev", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad yaml", body: "server: [\n"},
		{name: "port out of range", body: "server:\n  port: 70000\n"},
		{name: "relative dist path", body: "site:\n  dist_path: dist/\n"},
		{name: "static path without trailing slash", body: "site:\n  static_path: /static\n"},
		{name: "dev server url without host", body: "site:\n  dev_server_url: localhost\n"},
		{name: "root dist path", body: "site:\n  dist_path: /\n"},
		{name: "same dist and static path", body: "site:\n  dist_path: /js/\n  static_path: /js/\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			writeConfig(t, home, tt.body)
			if _, _, err := Load(); err == nil {
				t.Fatalf("Load() expected error for %q", tt.body)
			}
		})
	}
}

func TestTemplateDir_FallsBackToWorkingDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TemplateName), []byte("<html></html>"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	chdir(t, dir)

	got, err := (&AppConfig{}).TemplateDir()
	if err != nil {
		t.Fatalf("TemplateDir() error = %v", err)
	}
	// Resolve symlinks: macOS temp dirs live behind /private.
	want, _ := filepath.EvalSymlinks(dir)
	if resolved, _ := filepath.EvalSymlinks(got); resolved != want {
		t.Fatalf("TemplateDir() = %s, want %s", got, dir)
	}
}

func TestTemplateDir_NotFound(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := (&AppConfig{}).TemplateDir(); err == nil {
		t.Fatalf("TemplateDir() expected error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}

	t.Setenv("MOTIONSITE_TEST_MODE", "")
	os.Unsetenv("MOTIONSITE_TEST_MODE")
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("MOTIONSITE_TEST_MODE=Development/1.0\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv("MOTIONSITE_TEST_MODE"); got != "Development/1.0" {
		t.Fatalf("MOTIONSITE_TEST_MODE = %q", got)
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (stand-in for testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
