package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/edgepunks/edgepunks/pkg/artwork"
	"github.com/edgepunks/edgepunks/pkg/chain"
	"github.com/edgepunks/edgepunks/pkg/errors"
)

// isolateConfig points every config lookup at an empty temp dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(envConfig, "")
	t.Setenv(envRPCURL, "")
	return dir
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolateConfig(t)

	cfg, warnings, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
	if cfg.Contract != chain.DefaultContract || cfg.CanonicalWidth != artwork.DefaultCanonicalWidth {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.OverrideDir != "" {
		t.Errorf("OverrideDir = %q, want disabled", cfg.OverrideDir)
	}
	if cfg.Cache.Backend != backendFile || cfg.Cache.TTL.Duration != 7*24*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadConfigFile(t *testing.T) {
	isolateConfig(t)
	path := writeConfig(t, `
rpc_url = "https://rpc.example/v2/key"
concurrency = 4
override_dir = "24x24-transparent"
colour = "blue"

[cache]
backend = "Redis"
redis_url = "redis://localhost:6379/0"
ttl = "36h"
`)

	cfg, warnings, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
	if cfg.RPCURL != "https://rpc.example/v2/key" || cfg.Concurrency != 4 || cfg.OverrideDir != "24x24-transparent" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MaxSupply != 888 {
		t.Errorf("MaxSupply = %d, want default 888", cfg.MaxSupply)
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.TTL.Duration != 36*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if len(warnings) != 1 || warnings[0] != "unknown config key colour" {
		t.Errorf("warnings = %q", warnings)
	}
}

func TestLoadConfigSearchOrder(t *testing.T) {
	home := isolateConfig(t)
	userFile := filepath.Join(home, "edgepunks", "config.toml")
	if err := os.MkdirAll(filepath.Dir(userFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(userFile, []byte("concurrency = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Concurrency != 2 || cfg.Path != userFile {
		t.Errorf("user config not read: concurrency=%d path=%q", cfg.Concurrency, cfg.Path)
	}

	t.Setenv(envConfig, writeConfig(t, "concurrency = 3\n"))
	cfg, _, err = loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Concurrency != 3 {
		t.Errorf("$%s ignored: concurrency=%d", envConfig, cfg.Concurrency)
	}

	cfg, _, err = loadConfig(writeConfig(t, "concurrency = 5\n"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Concurrency != 5 {
		t.Errorf("--config ignored: concurrency=%d", cfg.Concurrency)
	}
}

func TestLoadConfigEnvRPCURL(t *testing.T) {
	isolateConfig(t)
	t.Setenv(envRPCURL, "wss://rpc.example/ws")
	path := writeConfig(t, `rpc_url = "https://file.example"`)

	cfg, _, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.RPCURL != "wss://rpc.example/ws" {
		t.Errorf("RPCURL = %q, want the environment value", cfg.RPCURL)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	isolateConfig(t)

	tests := []struct {
		name string
		body string
	}{
		{"syntax", `concurrency = `},
		{"bad contract", `contract = "0x1234"`},
		{"bad rpc url", `rpc_url = "ftp://example.com"`},
		{"zero supply", `max_supply = 0`},
		{"zero concurrency", `concurrency = 0`},
		{"zero width", `canonical_width = 0`},
		{"negative rate", `requests_per_second = -1.0`},
		{"bad ttl", "[cache]\nttl = \"soon\""},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := loadConfig(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		_, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("error = %v, want INVALID_CONFIG", err)
		}
	})
}
