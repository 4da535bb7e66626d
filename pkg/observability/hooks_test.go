package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopRenderHooks{}
	r.OnRenderStart(ctx, "7")
	r.OnRenderComplete(ctx, "7", "procedural", time.Second, nil)

	ch := NoopChainHooks{}
	ch.OnCall(ctx, "tokenURI", "7")
	ch.OnCallComplete(ctx, "tokenURI", "7", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "tokenuri")
	c.OnCacheMiss(ctx, "tokenuri")
	c.OnCacheSet(ctx, "tokenuri", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Chain().(NoopChainHooks); !ok {
		t.Error("Chain() should return NoopChainHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customChain := &testChainHooks{}
	SetChainHooks(customChain)
	if Chain() != customChain {
		t.Error("SetChainHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}
}

func TestLogHooks(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	LogHooks{Logger: logger}.Install()

	ctx := context.Background()
	Render().OnRenderComplete(ctx, "42", "unique", time.Millisecond, nil)
	Chain().OnCallComplete(ctx, "tokenURI", "42", time.Millisecond, errors.New("reverted"))
	Cache().OnCacheSet(ctx, "tokenuri", 10)

	out := buf.String()
	for _, want := range []string{"render done", "token=42", "kind=unique", "eth_call failed", "err=reverted", "cache set", "bytes=10"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testRenderHooks struct{ NoopRenderHooks }
type testChainHooks struct{ NoopChainHooks }
type testCacheHooks struct{ NoopCacheHooks }
