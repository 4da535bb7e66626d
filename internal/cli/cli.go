package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/cache"
	"github.com/edgepunks/edgepunks/pkg/chain"
	"github.com/edgepunks/edgepunks/pkg/errors"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "edgepunks"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config *Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Factories
// =============================================================================

// newRenderer builds the renderer for generate and serve. An empty
// overrideDir leaves transparent 1-of-1 tokens unsupported.
func (c *CLI) newRenderer(overrideDir string) *artwork.Renderer {
	opts := []artwork.Option{artwork.WithCanonicalWidth(c.Config.CanonicalWidth)}
	if overrideDir != "" {
		opts = append(opts, artwork.WithOverrides(artwork.DirOverrides{Dir: overrideDir}))
		c.Logger.Debug("transparent overrides enabled", "dir", overrideDir)
	}
	return artwork.NewRenderer(opts...)
}

func (c *CLI) newRunner(overrideDir string) *pipeline.Runner {
	return pipeline.NewRunner(c.newRenderer(overrideDir), c.Logger)
}

// newCache opens the tokenURI cache selected by the config.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == backendNone {
		return cache.NewNullCache(), nil
	}
	if c.Config.Cache.Backend == backendRedis {
		return cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newChainClient dials the configured RPC endpoint. The returned close
// function releases both the connection and the cache.
func (c *CLI) newChainClient(ctx context.Context, noCache bool) (*chain.Client, func(), error) {
	if c.Config.RPCURL == "" {
		return nil, nil, errors.New(errors.ErrCodeInvalidConfig, "%s environment variable is not set", envRPCURL)
	}
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	client, err := chain.Dial(ctx, c.Config.RPCURL, c.Config.Contract,
		chain.WithCache(store, c.Config.Cache.TTL.Duration),
		chain.WithRateLimit(c.Config.RequestsPerSecond),
	)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return client, func() {
		client.Close()
		store.Close()
	}, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/edgepunks/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
