package cli

import (
	"bytes"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testConfig() *Config {
	return &Config{
		Engine:       "std",
		OutputSuffix: "adjusted",
		JPEGQuality:  92,
		Preview:      "never",
		UpdateRepo:   "pictools/labrador",
	}
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testApp() (*App, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	app := &App{Config: testConfig(), Log: discardLogger(), Stdout: &stdout, Stderr: &stderr}
	return app, &stdout, &stderr
}

func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, newTestImage(w, h)); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return path
}

func TestAppRunAdjustsAndSaves(t *testing.T) {
	input := writeTestPNG(t, 60, 40)
	app, stdout, stderr := testApp()

	code := app.Run(Options{InputPath: input, NoUpdateCheck: true})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Scale factor: 0.024") {
		t.Errorf("report missing scale factor:\n%s", out)
	}
	wantPath := strings.TrimSuffix(input, ".png") + "-adjusted.png"
	if !strings.Contains(out, "Saved to "+wantPath) {
		t.Errorf("missing save line:\n%s", out)
	}
	img, info, err := LoadImage(wantPath)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if info.Format != "png" {
		t.Errorf("output format = %q", info.Format)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 40 {
		t.Errorf("output bounds = %v, want 60x40", b)
	}
}

func TestAppRunExplicitOutputPath(t *testing.T) {
	input := writeTestPNG(t, 30, 30)
	outPath := filepath.Join(t.TempDir(), "custom.jpg")
	app, _, stderr := testApp()

	code := app.Run(Options{InputPath: input, OutputPath: outPath, NoUpdateCheck: true})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	_, info, err := LoadImage(outPath)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if info.Format != "jpeg" {
		t.Errorf("output format = %q, want jpeg", info.Format)
	}
}

func TestAppRunNoImage(t *testing.T) {
	app, _, stderr := testApp()
	code := app.Run(Options{NoUpdateCheck: true})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if got := strings.TrimSpace(stderr.String()); got != "no image open" {
		t.Errorf("stderr = %q, want the precondition reason verbatim", got)
	}
}

func TestAppRunUnknownEngine(t *testing.T) {
	input := writeTestPNG(t, 20, 20)
	app, _, stderr := testApp()
	code := app.Run(Options{InputPath: input, Engine: "turbo", NoUpdateCheck: true})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	msg := stderr.String()
	if !strings.Contains(msg, `unknown executor "turbo"`) {
		t.Errorf("stderr = %q", msg)
	}
	if !strings.Contains(msg, "std") {
		t.Errorf("stderr should list registered executors: %q", msg)
	}
}

func TestAppRunInfoOnly(t *testing.T) {
	data, _ := makeTestJPEG(t, newTestImage(20, 10), 6)
	input := writeFixture(t, "rotated.jpg", data)
	app, stdout, stderr := testApp()

	code := app.Run(Options{InputPath: input, InfoOnly: true, NoUpdateCheck: true})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Format: JPEG, Width: 10, Height: 20") {
		t.Errorf("missing oriented dimensions:\n%s", out)
	}
	if !strings.Contains(out, "Orientation: 6") {
		t.Errorf("missing EXIF summary:\n%s", out)
	}
}

func TestAppRunPreviewAlways(t *testing.T) {
	t.Setenv("PREVIEW_BACKEND", "blocks")
	t.Setenv("COLUMNS", "40")
	input := writeTestPNG(t, 40, 40)
	app, stdout, stderr := testApp()

	code := app.Run(Options{InputPath: input, Preview: "always", NoUpdateCheck: true})
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	out := stdout.String()
	if !strings.Contains(out, "Before:") || !strings.Contains(out, "After:") {
		t.Errorf("missing preview headers:\n%s", out)
	}
	if !strings.Contains(out, "▀") {
		t.Error("preview did not render half blocks")
	}
}
