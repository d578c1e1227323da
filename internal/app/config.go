package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lockfit/internal/protocol/deeplink"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// Home is the state directory, e.g. $HOME/.lockfit. Not read from YAML.
	Home string `yaml:"-"`

	Wallet   WalletConfig   `yaml:"wallet"`
	Callback CallbackConfig `yaml:"callback"`
	Storage  StorageConfig  `yaml:"storage"`

	// Opener is "auto", "browser" or "print".
	Opener string `yaml:"opener"`

	Log LogConfig `yaml:"log"`
}

// WalletConfig holds the connect request parameters.
type WalletConfig struct {
	// Links is "scheme" (phantom://) or "universal" (https://phantom.app/ul/).
	Links            string        `yaml:"links"`
	Cluster          string        `yaml:"cluster"`
	AppURL           string        `yaml:"app_url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PendingTimeout   time.Duration `yaml:"pending_timeout"`
}

// CallbackConfig selects where the wallet redirects to.
type CallbackConfig struct {
	// Redirect is "scheme" (the wallet opens Scheme URLs, which the OS
	// hands to "lockfit callback") or "loopback" (the wallet redirects the
	// browser straight to Listen).
	Redirect string `yaml:"redirect"`
	// Scheme is the custom URL scheme registered for this app.
	Scheme string `yaml:"scheme"`
	// Listen is the loopback address of the callback listener.
	Listen string `yaml:"listen"`
}

// StorageConfig selects the secure store backend.
type StorageConfig struct {
	// Driver is "file", "sqlite" or "memory".
	Driver string `yaml:"driver"`
	// Path overrides the default location under Home.
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Wallet: WalletConfig{
			Links:            "scheme",
			Cluster:          "mainnet-beta",
			AppURL:           "https://lockfit.xyz",
			HandshakeTimeout: 10 * time.Minute,
			PendingTimeout:   10 * time.Minute,
		},
		Callback: CallbackConfig{
			Redirect: "scheme",
			Scheme:   "lockfit://",
			Listen:   "127.0.0.1:8976",
		},
		Storage: StorageConfig{
			Driver: "file",
		},
		Opener: "auto",
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadConfig overlays the YAML file at path on the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Wallet.Links {
	case "scheme", "universal":
	default:
		return fmt.Errorf("config: wallet.links must be scheme or universal, got %q", c.Wallet.Links)
	}
	switch c.Storage.Driver {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("config: storage.driver must be file, sqlite or memory, got %q", c.Storage.Driver)
	}
	switch {
	case c.Callback.Redirect == "scheme" && c.Callback.Scheme != "":
	case c.Callback.Redirect == "loopback" && c.Callback.Listen != "":
	default:
		return fmt.Errorf("config: callback.redirect %q needs callback.scheme or callback.listen", c.Callback.Redirect)
	}
	return nil
}

// WalletBase returns the outbound link base.
func (c *Config) WalletBase() string {
	if c.Wallet.Links == "universal" {
		return deeplink.UniversalWalletBase
	}
	return deeplink.SchemeWalletBase
}

// RedirectBase returns the prefix of every callback URL.
func (c *Config) RedirectBase() string {
	if c.Callback.Redirect == "loopback" {
		return "http://" + strings.TrimSuffix(c.Callback.Listen, "/") + "/"
	}
	return c.Callback.Scheme
}

// StoragePath returns the backend location for file and sqlite stores.
func (c *Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Driver {
	case "sqlite":
		return filepath.Join(c.Home, "lockfit.db")
	default:
		return filepath.Join(c.Home, "secure")
	}
}
