package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug line on Logger.
type LogHooks struct {
	Logger *log.Logger
}

func (h LogHooks) OnRenderStart(_ context.Context, tokenID string) {
	h.Logger.Debug("render start", "token", tokenID)
}

func (h LogHooks) OnRenderComplete(_ context.Context, tokenID, kind string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("render failed", "token", tokenID, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("render done", "token", tokenID, "kind", kind, "elapsed", d)
}

func (h LogHooks) OnCall(_ context.Context, method, tokenID string) {
	h.Logger.Debug("eth_call", "method", method, "token", tokenID)
}

func (h LogHooks) OnCallComplete(_ context.Context, method, tokenID string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("eth_call failed", "method", method, "token", tokenID, "elapsed", d, "err", err)
		return
	}
	h.Logger.Debug("eth_call done", "method", method, "token", tokenID, "elapsed", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

// Install registers h for every hook category.
func (h LogHooks) Install() {
	SetRenderHooks(h)
	SetChainHooks(h)
	SetCacheHooks(h)
}

var (
	_ RenderHooks = LogHooks{}
	_ ChainHooks  = LogHooks{}
	_ CacheHooks  = LogHooks{}
)
