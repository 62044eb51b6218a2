package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys
const (
	KeyLocale        = "locale"
	KeyVault         = "vault"
	KeyGitHubToken   = "github.token"
	KeyGitHubTimeout = "github.timeout"
	KeyGitHubRetries = "github.retries"
)

const (
	// DefaultLocale auto-detects the system locale
	DefaultLocale = "auto"
	// DefaultTimeout bounds a single GitHub request
	DefaultTimeout = 30 * time.Second
	// DefaultRetries is how often a failed GitHub request is attempted
	DefaultRetries = 3

	envPrefix = "BRAT"
)

// ErrUnknownKey is returned by Set for keys brat does not know
var ErrUnknownKey = errors.New("unknown config key")

// Keys lists the keys accepted by Set
var Keys = []string{KeyLocale, KeyVault, KeyGitHubToken, KeyGitHubTimeout, KeyGitHubRetries}

// Config represents the brat tool configuration
type Config struct {
	Locale string       `mapstructure:"locale" json:"locale"` // "auto" or ISO format (e.g., "ko-KR", "en-US")
	Vault  string       `mapstructure:"vault" json:"vault"`   // default Obsidian vault root
	GitHub GitHubConfig `mapstructure:"github" json:"github"`
}

// GitHubConfig contains GitHub access settings
type GitHubConfig struct {
	Token   string        `mapstructure:"token" json:"-"`
	Timeout time.Duration `mapstructure:"timeout" json:"timeout"`
	Retries uint          `mapstructure:"retries" json:"retries"`
}

type loadSettings struct {
	path string
}

// Option configures Load and Set
type Option func(*loadSettings)

// WithConfigPath overrides the config file location
func WithConfigPath(path string) Option {
	return func(s *loadSettings) {
		s.path = path
	}
}

func resolve(opts []Option) loadSettings {
	s := loadSettings{path: ConfigPath()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Load reads the configuration using the precedence:
// defaults < config file < environment variables.
// A missing config file is not an error.
func Load(opts ...Option) (*Config, error) {
	s := resolve(opts)

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")

	v.SetDefault(KeyLocale, DefaultLocale)
	v.SetDefault(KeyVault, "")
	v.SetDefault(KeyGitHubToken, "")
	v.SetDefault(KeyGitHubTimeout, DefaultTimeout)
	v.SetDefault(KeyGitHubRetries, DefaultRetries)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", s.path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Locale == "" {
		cfg.Locale = DefaultLocale
	}
	if cfg.GitHub.Timeout <= 0 {
		cfg.GitHub.Timeout = DefaultTimeout
	}
	if cfg.GitHub.Retries == 0 {
		cfg.GitHub.Retries = 1
	}

	return &cfg, nil
}

// Set writes a single key to the config file.
// Only the file layer is touched; defaults and environment are not persisted.
func Set(key, value string, opts ...Option) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var typed any = value
	switch key {
	case KeyGitHubTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		typed = d.String()
	case KeyGitHubRetries:
		var n uint
		if _, err := fmt.Sscanf(value, "%d", &n); err != nil || n == 0 {
			return fmt.Errorf("invalid value '%s' for %s: expected a positive integer", value, key)
		}
		typed = n
	case KeyVault:
		if value != "" {
			abs, err := filepath.Abs(value)
			if err != nil {
				return err
			}
			typed = abs
		}
	}

	s := resolve(opts)

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("failed to read config %s: %w", s.path, err)
	}

	v.Set(key, typed)

	if err := EnsureDir(filepath.Dir(s.path)); err != nil {
		return err
	}
	return v.WriteConfigAs(s.path)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
