package cli

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/cache"
	"github.com/edgepunks/edgepunks/pkg/chain"
	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

// Environment variables read by the CLI.
const (
	envConfig = "EDGEPUNKS_CONFIG"
	envRPCURL = "WEB3_RPC_URL"
)

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the contents of config.toml.
//
//	rpc_url = "https://eth-mainnet.example/v2/KEY"
//	concurrency = 16
//	override_dir = "24x24-transparent"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "72h"
type Config struct {
	RPCURL            string      `toml:"rpc_url"`
	Contract          string      `toml:"contract"`
	MaxSupply         int         `toml:"max_supply"`
	Concurrency       int         `toml:"concurrency"`
	CanonicalWidth    int         `toml:"canonical_width"`
	SVGDir            string      `toml:"svg_dir"`
	MetadataDir       string      `toml:"metadata_dir"`
	OverrideDir       string      `toml:"override_dir"`
	RequestsPerSecond float64     `toml:"requests_per_second"`
	Cache             CacheConfig `toml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// CacheConfig selects the tokenURI cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	RedisURL string   `toml:"redis_url"`
	TTL      duration `toml:"ttl"`
}

// duration decodes TOML strings such as "36h".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func defaultConfig() *Config {
	return &Config{
		Contract:       chain.DefaultContract,
		MaxSupply:      pipeline.DefaultMaxSupply,
		Concurrency:    pipeline.DefaultConcurrency,
		CanonicalWidth: artwork.DefaultCanonicalWidth,
		SVGDir:         "svg",
		MetadataDir:    "metadata",
		Cache: CacheConfig{
			Backend: backendFile,
			TTL:     duration{cache.DefaultTTL},
		},
	}
}

// configPath resolves which file to read. An explicit path or $EDGEPUNKS_CONFIG
// must exist; the per-user file is optional.
func configPath(explicit string) (path string, required bool) {
	if explicit != "" {
		return explicit, true
	}
	if env := os.Getenv(envConfig); env != "" {
		return env, true
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName, "config.toml"), false
	}
	return "", false
}

// loadConfig reads the config file, applies environment overrides and
// validates the result. Unknown keys are returned as warnings.
func loadConfig(explicit string) (*Config, []string, error) {
	cfg := defaultConfig()
	var warnings []string

	path, required := configPath(explicit)
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			cfg.Path = path
			for _, key := range md.Undecoded() {
				warnings = append(warnings, "unknown config key "+key.String())
			}
			sort.Strings(warnings)
		case stderrors.Is(err, fs.ErrNotExist) && !required:
		case stderrors.Is(err, fs.ErrNotExist):
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
		default:
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	}

	if v := os.Getenv(envRPCURL); v != "" {
		cfg.RPCURL = v
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return cfg, warnings, nil
}

func (c *Config) validate() error {
	if err := chain.ValidateAddress(c.Contract); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "contract")
	}
	if c.RPCURL != "" {
		if err := errors.ValidateURL(c.RPCURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "rpc_url")
		}
	}
	if c.MaxSupply < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_supply must be >= 1, got %d", c.MaxSupply)
	}
	if c.Concurrency < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.CanonicalWidth < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "canonical_width must be >= 1, got %d", c.CanonicalWidth)
	}
	if c.RequestsPerSecond < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "requests_per_second must be >= 0")
	}
	c.Cache.Backend = strings.ToLower(c.Cache.Backend)
	switch c.Cache.Backend {
	case backendFile, backendNone:
	case backendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	return nil
}
