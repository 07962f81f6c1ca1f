package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/securedrop/internal/common"
	"github.com/dmitrijs2005/securedrop/internal/cryptox"
)

// Storage backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultKeyFile is the key file name used when no path is configured.
const DefaultKeyFile = "encryption.key"

// Config holds runtime settings for the SecureDrop CLI.
//
// ClientID selects the pair of namespace files; it is required. KeyPath is
// shared by every client id. When empty it resolves to DataDir/encryption.key.
type Config struct {
	ClientID         string
	KeyPath          string
	DataDir          string
	Backend          string
	HashAlgorithm    string
	BcryptCost       int
	MaxLoginAttempts int
	SessionTTL       time.Duration
	StrictStore      bool
	LogLevel         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "."
	c.Backend = BackendJSON
	c.HashAlgorithm = cryptox.AlgorithmBcrypt
	c.BcryptCost = 12
	c.MaxLoginAttempts = common.DefaultMaxLoginAttempts
	c.SessionTTL = 0
	c.StrictStore = false
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config from defaults, then overlays an optional
// JSON file (-c / -config), environment variables, flags and finally the
// positional client id. Later sources take precedence. The result is validated.
func LoadConfig(args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, getenv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports ErrConfiguration for settings the core cannot start with.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: client id not specified", common.ErrConfiguration)
	}
	if strings.ContainsAny(c.ClientID, `/\`) || c.ClientID == "." || c.ClientID == ".." {
		return fmt.Errorf("%w: client id %q must not contain path separators", common.ErrConfiguration, c.ClientID)
	}
	switch c.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend %q", common.ErrConfiguration, c.Backend)
	}
	switch c.HashAlgorithm {
	case cryptox.AlgorithmBcrypt, cryptox.AlgorithmArgon2id:
	default:
		return fmt.Errorf("%w: unknown hash algorithm %q", common.ErrConfiguration, c.HashAlgorithm)
	}
	if c.MaxLoginAttempts < 1 {
		return fmt.Errorf("%w: max login attempts must be positive", common.ErrConfiguration)
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("%w: session ttl must not be negative", common.ErrConfiguration)
	}
	return nil
}

// ResolvedKeyPath returns KeyPath, or the default key file inside DataDir.
func (c *Config) ResolvedKeyPath() string {
	if c.KeyPath != "" {
		return c.KeyPath
	}
	return filepath.Join(c.DataDir, DefaultKeyFile)
}

// NamespacePath returns the JSON file holding the given record kind for this client.
func (c *Config) NamespacePath(namespace string) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("%s_%s.json", c.ClientID, namespace))
}

// DatabasePath returns the SQLite database file for this client.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.ClientID+".db")
}
