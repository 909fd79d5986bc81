package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig is read from a YAML file under the user's home directory.
// All fields are optional; defaults are applied by the accessor methods.
//
// Example (~/.motionsite/config.yaml):
//
// server:
//   host: 0.0.0.0
//   port: 8080
// site:
//   template_dir: /srv/motion/site
//   dev_server_url: http://localhost:8081/
//   dist_dir: /srv/motion/dist
//   static_dir: /srv/motion/static
//
// Notes:
// - MOTIONSITE_CONFIG points at a different file.
// - If the config file does not exist, Load returns defaults without error.
// - If the config file exists but cannot be parsed, Load returns an error.
// - PORT in the environment overrides server.port.

type AppConfig struct {
	Server ServerConfig `yaml:"server"`
	Site   SiteConfig   `yaml:"site"`
}

type ServerConfig struct {
	Host *string `yaml:"host"`
	Port *int    `yaml:"port"`
}

type SiteConfig struct {
	TemplateDir  *string `yaml:"template_dir"`
	ModeEnv      *string `yaml:"mode_env"`
	DevMarker    *string `yaml:"dev_marker"`
	DevServerURL *string `yaml:"dev_server_url"`
	DistPath     *string `yaml:"dist_path"`
	StaticPath   *string `yaml:"static_path"`
	DistDir      *string `yaml:"dist_dir"`
	StaticDir    *string `yaml:"static_dir"`
}

const (
	DefaultHost         = "127.0.0.1"
	DefaultPort         = 8080
	DefaultModeEnv      = "SERVER_SOFTWARE"
	DefaultDevMarker    = "Development"
	DefaultDevServerURL = "http://localhost:8081/"
	DefaultDistPath     = "/dist/"
	DefaultStaticPath   = "/static/"

	// TemplateName is the page every catch-all request renders.
	TemplateName = "container.html"

	envConfigPath = "MOTIONSITE_CONFIG"
	envPort       = "PORT"
)

// DefaultPaths returns the config dir and config file path.
func DefaultPaths() (configDir string, configFile string, err error) {
	if p := strings.TrimSpace(os.Getenv(envConfigPath)); p != "" {
		return filepath.Dir(p), p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", fmt.Errorf("get user home dir: %w", err)
	}
	configDir = filepath.Join(home, ".motionsite")
	configFile = filepath.Join(configDir, "config.yaml")
	return configDir, configFile, nil
}

// Load reads the config file.
// If the file doesn't exist, it returns a default config and nil error.
func Load() (*AppConfig, string, error) {
	_, configFile, err := DefaultPaths()
	if err != nil {
		return nil, "", err
	}

	cfg := &AppConfig{}

	b, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := cfg.applyEnv(); err != nil {
				return nil, "", err
			}
			return cfg, configFile, nil
		}
		return nil, "", fmt.Errorf("read config file %s: %w", configFile, err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, "", fmt.Errorf("parse yaml config %s: %w", configFile, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, "", err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w in %s", err, configFile)
	}
	return cfg, configFile, nil
}

// Validate checks the values that have no safe fallback.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Host()) == "" {
		return errors.New("invalid server.host (empty)")
	}
	if port := c.Port(); port < 1 || port > 65535 {
		return fmt.Errorf("invalid server.port %d", port)
	}
	if u, err := url.Parse(c.DevServerURL()); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid site.dev_server_url %q", c.DevServerURL())
	}
	for name, p := range map[string]string{"site.dist_path": c.DistPath(), "site.static_path": c.StaticPath()} {
		if p == "/" || !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
			return fmt.Errorf("invalid %s %q (must start and end with / and not be the root)", name, p)
		}
	}
	if c.DistPath() == c.StaticPath() {
		return fmt.Errorf("site.dist_path and site.static_path are both %q", c.DistPath())
	}
	return nil
}

func (c *AppConfig) applyEnv() error {
	v := strings.TrimSpace(os.Getenv(envPort))
	if v == "" {
		return nil
	}
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid %s value %q", envPort, v)
	}
	c.Server.Port = &p
	return nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *AppConfig) Host() string {
	if c == nil {
		return DefaultHost
	}
	return orDefault(c.Server.Host, DefaultHost)
}

func (c *AppConfig) Port() int {
	if c == nil || c.Server.Port == nil {
		return DefaultPort
	}
	return *c.Server.Port
}

// ModeEnv is the environment variable inspected for the development marker.
func (c *AppConfig) ModeEnv() string {
	if c == nil {
		return DefaultModeEnv
	}
	return orDefault(c.Site.ModeEnv, DefaultModeEnv)
}

func (c *AppConfig) DevMarker() string {
	if c == nil {
		return DefaultDevMarker
	}
	return orDefault(c.Site.DevMarker, DefaultDevMarker)
}

func (c *AppConfig) DevServerURL() string {
	if c == nil {
		return DefaultDevServerURL
	}
	return orDefault(c.Site.DevServerURL, DefaultDevServerURL)
}

func (c *AppConfig) DistPath() string {
	if c == nil {
		return DefaultDistPath
	}
	return orDefault(c.Site.DistPath, DefaultDistPath)
}

func (c *AppConfig) StaticPath() string {
	if c == nil {
		return DefaultStaticPath
	}
	return orDefault(c.Site.StaticPath, DefaultStaticPath)
}

// DistDir is the on-disk bundle directory, empty when not served by this process.
func (c *AppConfig) DistDir() string {
	if c == nil {
		return ""
	}
	return orDefault(c.Site.DistDir, "")
}

func (c *AppConfig) StaticDir() string {
	if c == nil {
		return ""
	}
	return orDefault(c.Site.StaticDir, "")
}

// TemplateDir returns the directory holding container.html.
// An explicit site.template_dir wins; otherwise the executable's directory,
// the working directory and ./site are tried in that order.
func (c *AppConfig) TemplateDir() (string, error) {
	if c != nil {
		if dir := orDefault(c.Site.TemplateDir, ""); dir != "" {
			return dir, nil
		}
	}

	var candidates []string
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Dir(exe))
	}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, wd, filepath.Join(wd, "site"))
	}
	for _, dir := range candidates {
		if st, err := os.Stat(filepath.Join(dir, TemplateName)); err == nil && !st.IsDir() {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%s not found in %s", TemplateName, strings.Join(candidates, ", "))
}

func orDefault(v *string, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return def
	}
	return s
}
