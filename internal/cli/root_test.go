package cli

import (
	"bytes"
	"encoding/base64"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/edgepunks/edgepunks/pkg/buildinfo"
	"github.com/edgepunks/edgepunks/pkg/pipeline"
)

// execute runs the CLI with args and returns what cobra printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestRootCommandTree(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	want := []string{"cache", "completion", "generate", "inspect", "pull", "serve"}

	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			found = found || g == name
		}
		if !found {
			t.Errorf("subcommand %q not registered (have %v)", name, got)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.Contains(out, buildinfo.Version) || !strings.Contains(out, "commit:") {
		t.Errorf("version output = %q", out)
	}
}

// layerSVG builds a document from solid w x w layers, one pixel each.
func layerSVG(t *testing.T, w int, colors ...color.NRGBA) string {
	t.Helper()
	urls := make([]string, len(colors))
	for i, c := range colors {
		img := image.NewNRGBA(image.Rect(0, 0, w, w))
		img.SetNRGBA(i%w, 0, c)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			t.Fatal(err)
		}
		urls[i] = "url(data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()) + ")"
	}
	return `<svg xmlns="http://www.w3.org/2000/svg" style="background-image:` + strings.Join(urls, ",") + `;"></svg>`
}

func TestGenerateCommand(t *testing.T) {
	isolateConfig(t)
	svgDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	cfg := writeConfig(t, "canonical_width = 8\nsvg_dir = "+strconv.Quote(svgDir)+"\n")

	doc := layerSVG(t, 8,
		color.NRGBA{0xff, 0, 0, 0xff},
		color.NRGBA{0, 0xff, 0, 0xff},
		color.NRGBA{0, 0, 0xff, 0xff},
	)
	if err := os.WriteFile(filepath.Join(svgDir, "1.svg"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := execute(t, "--config", cfg, "generate", "-s", "16", "-o", outDir, "1", "2")
	if !stderrors.Is(err, pipeline.ErrBatchFailed) {
		t.Fatalf("error = %v, want ErrBatchFailed for the missing token", err)
	}

	f, err := os.Open(filepath.Join(outDir, "1.png"))
	if err != nil {
		t.Fatalf("token 1 not rendered: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if got := img.Bounds().Dx(); got != 16 {
		t.Errorf("width = %d, want 16", got)
	}
	if _, err := os.Stat(filepath.Join(outDir, "2.png")); !os.IsNotExist(err) {
		t.Errorf("token 2 should not be rendered, stat err = %v", err)
	}
}

func TestGenerateCommandInvalidSize(t *testing.T) {
	isolateConfig(t)
	_, err := execute(t, "generate", "-s", "-1", "--svg-dir", t.TempDir(), "1")
	if err == nil {
		t.Fatal("expected an error for a negative image size")
	}
}

func TestInspectCommand(t *testing.T) {
	isolateConfig(t)
	svgDir := t.TempDir()
	doc := layerSVG(t, 8, color.NRGBA{0xff, 0, 0, 0xff}, color.NRGBA{0, 0xff, 0, 0xff}, color.NRGBA{0, 0, 0xff, 0xff})
	if err := os.WriteFile(filepath.Join(svgDir, "5.svg"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "inspect", "--svg-dir", svgDir, "5"); err != nil {
		t.Errorf("inspect: %v", err)
	}
	if _, err := execute(t, "inspect", "--svg-dir", svgDir, "6"); err == nil {
		t.Error("inspect of a missing token should fail")
	}
	if _, err := execute(t, "inspect", "abc"); err == nil {
		t.Error("inspect of an invalid id should fail")
	}
}

func TestPullRequiresRPCURL(t *testing.T) {
	isolateConfig(t)
	_, err := execute(t, "pull", "1")
	if err == nil || !strings.Contains(err.Error(), "WEB3_RPC_URL environment variable is not set") {
		t.Errorf("error = %v, want missing WEB3_RPC_URL", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolateConfig(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, "edgepunks") {
			t.Errorf("completion %s output does not mention edgepunks", shell)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
