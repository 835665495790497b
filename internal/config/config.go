package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the kiosk server.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
//
// The portal password deliberately has no place here: it is sourced from
// the TCSCHED_PASSWORD environment variable (see Password), optionally
// loaded from a .env file sitting next to the config file.
type Config struct {
	// BaseURL is the portal REST API root, e.g. "https://portal.example.com/api".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Username is the portal account to sign in with.
	Username string `yaml:"username" json:"username"`

	// Timezone is the IANA timezone used for all displayed dates
	// (e.g. "Europe/Paris").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Listen is the HTTP listen address for kiosk mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// controlling how often kiosk mode refetches the schedule.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the HTTP response cache and the persisted auth token.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all kiosk
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultPath returns the per-user default config location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./tcsched.yaml"
	}
	return filepath.Join(home, ".config", "tcsched", "config.yaml")
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://127.0.0.1:5000/api",
		Timezone:    "Europe/Paris",
		Listen:      "127.0.0.1:8080",
		RefreshCron: "*/15 * * * *",
		CacheDir:    defaultCacheDir(),
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./cache"
	}
	return filepath.Join(home, ".cache", "tcsched")
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		c.BaseURL = "http://127.0.0.1:5000/api"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Paris"
	}
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir()
	}
}

// Password returns the portal password from the environment. A .env file
// next to the given config path is loaded first, if present, so credentials
// never live in the YAML file itself.
func Password(configPath string) string {
	if configPath != "" {
		envPath := filepath.Join(filepath.Dir(configPath), ".env")
		// Missing .env is the normal case; godotenv errors are ignored.
		_ = godotenv.Load(envPath)
	}
	return os.Getenv("TCSCHED_PASSWORD")
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".tcsched-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
