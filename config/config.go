package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration loaded from TOML.
type Config struct {
	RPCAddress    string `toml:"RPCAddress"`
	DataDir       string `toml:"DataDir"`
	AuditLogPath  string `toml:"AuditLogPath"`
	LogFile       string `toml:"LogFile"`
	Environment   string `toml:"Environment"`
	OwnerAddress  string `toml:"OwnerAddress"`
	FeederAddress string `toml:"FeederAddress"`
	// RPCToken guards owner-only RPC methods when JWTSecret is unset.
	RPCToken string `toml:"RPCToken"`
	// JWTSecret enables HS256 bearer tokens carrying a "role" claim.
	JWTSecret string `toml:"JWTSecret"`
	// InitialXAUUSD/InitialUSDVND seed the oracle on first start (1e18-scaled
	// decimal strings); both empty means no seed quote.
	InitialXAUUSD string `toml:"InitialXAUUSD"`
	InitialUSDVND string `toml:"InitialUSDVND"`

	RateLimitPerMinute float64 `toml:"RateLimitPerMinute"`
	RateLimitBurst     int     `toml:"RateLimitBurst"`
}

// Load loads the configuration from the given path, creating a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = ":8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.AuditLogPath) == "" {
		cfg.AuditLogPath = filepath.Join(cfg.DataDir, "audit.db")
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 20
	}
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.OwnerAddress) == "" {
		return fmt.Errorf("OwnerAddress is required")
	}
	if strings.TrimSpace(cfg.FeederAddress) == "" {
		return fmt.Errorf("FeederAddress is required")
	}
	if (cfg.InitialXAUUSD == "") != (cfg.InitialUSDVND == "") {
		return fmt.Errorf("InitialXAUUSD and InitialUSDVND must be set together")
	}
	return nil
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
