package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDirXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(base, "edgepunks"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", "edgepunks"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestNewCacheBackends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(os.Stderr, LogInfo)

	tests := []struct {
		backend string
		noCache bool
		want    string
	}{
		{backendFile, false, "*cache.FileCache"},
		{backendFile, true, "cache.NullCache"},
		{backendNone, false, "cache.NullCache"},
	}
	for _, tt := range tests {
		c.Config.Cache.Backend = tt.backend
		got, err := c.newCache(t.Context(), tt.noCache)
		if err != nil {
			t.Fatalf("newCache(%s): %v", tt.backend, err)
		}
		if name := fmt.Sprintf("%T", got); name != tt.want {
			t.Errorf("newCache(%s, noCache=%v) = %s, want %s", tt.backend, tt.noCache, name, tt.want)
		}
		got.Close()
	}
}
