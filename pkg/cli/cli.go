// Package cli is the host glue around the adjustment core: image and
// metadata I/O, configuration, structured logging, terminal previews, and
// self updates.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pictools/labrador/pkg/adjust"
	"github.com/pictools/labrador/pkg/document"
)

// Options are the per-invocation knobs, usually parsed from flags. Zero
// values defer to the configuration.
type Options struct {
	InputPath     string
	OutputPath    string
	Engine        string
	Preview       string
	InfoOnly      bool
	Update        bool
	NoUpdateCheck bool
}

// App wires configuration, logging, and the output streams together. The
// report and previews go to Stdout, diagnostics to Stderr.
type App struct {
	Config *Config
	Log    *logrus.Logger
	Stdout io.Writer
	Stderr io.Writer
}

func NewApp(cfg *Config, log *logrus.Logger) *App {
	return &App{Config: cfg, Log: log, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (a *App) fail(err error) int {
	fmt.Fprintln(a.Stderr, err)
	return 1
}

// Run executes one pass and returns the process exit code. Every log line of
// the pass carries the same run_id field.
func (a *App) Run(opts Options) int {
	log := a.Log.WithField("run_id", uuid.NewString())

	if opts.Update {
		if err := SelfUpdate(a.Config.UpdateRepo); err != nil {
			return a.fail(err)
		}
		return 0
	}

	input := opts.InputPath
	if input == "" && stdoutIsTerminal() {
		if path, err := RequestInputPath(); err == nil {
			input = path
		}
	}

	doc := document.New(displayName(input))
	var info *SourceInfo
	if input != "" {
		img, srcInfo, err := LoadImage(input)
		if err != nil {
			return a.fail(err)
		}
		info = srcInfo
		if _, err := doc.AddLayer("Background", img); err != nil {
			return a.fail(err)
		}
		log.WithFields(logrus.Fields{
			"path":   input,
			"format": info.Format,
		}).Debug("Image loaded")
	}

	if opts.InfoOnly {
		return a.printInfo(doc, info)
	}

	engineName := opts.Engine
	if engineName == "" {
		engineName = a.Config.Engine
	}
	exec, err := adjust.NewExecutor(engineName)
	if err != nil {
		return a.fail(err)
	}

	report, err := adjust.NewRunner(exec, log).Run(doc)
	if err != nil {
		var pre *adjust.PreconditionError
		if errors.As(err, &pre) {
			fmt.Fprintln(a.Stderr, pre.Reason)
			return 1
		}
		return a.fail(err)
	}
	fmt.Fprintln(a.Stdout, report.String())

	out := opts.OutputPath
	if out == "" {
		out = DefaultOutputPath(input, a.Config.OutputSuffix)
	}
	saveOpts := SaveOptions{JPEGQuality: a.Config.JPEGQuality}
	if info != nil {
		saveOpts.Segments = info.Segments
		saveOpts.ResetOrientation = info.AutoOriented
	}
	layers := doc.Layers()
	if err := SaveImage(out, layers[len(layers)-1].Image(), saveOpts); err != nil {
		return a.fail(err)
	}
	fmt.Fprintf(a.Stdout, "Saved to %s\n", out)

	if a.shouldPreview(opts.Preview) {
		a.preview(doc, log)
	}
	if !opts.NoUpdateCheck {
		NotifyIfOutdated(log, a.Config.UpdateRepo)
	}
	return 0
}

func (a *App) printInfo(doc *document.Document, info *SourceInfo) int {
	if doc.ActiveLayer() == nil || info == nil {
		fmt.Fprintln(a.Stderr, "no image open")
		return 1
	}
	w, h := doc.Dimensions()
	fmt.Fprintf(a.Stdout, "Format: %s, Width: %.0f, Height: %.0f\n",
		strings.ToUpper(info.Format), w, h)
	if info.EXIF != nil {
		if s := info.EXIF.Summary(); s != "" {
			fmt.Fprintln(a.Stdout, s)
		}
	}
	return 0
}

func (a *App) shouldPreview(mode string) bool {
	if mode == "" {
		mode = a.Config.Preview
	}
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	return stdoutIsTerminal() && PreviewSupported()
}

// preview renders the source and adjusted layers under Before/After headers.
func (a *App) preview(doc *document.Document, log logrus.FieldLogger) {
	layers := doc.Layers()
	if len(layers) == 0 {
		return
	}
	fmt.Fprintln(a.Stdout, "Before:")
	if err := PreviewImage(a.Stdout, layers[0].Image()); err != nil {
		log.WithError(err).Debug("Preview failed")
		return
	}
	fmt.Fprintln(a.Stdout, "After:")
	if err := PreviewImage(a.Stdout, layers[len(layers)-1].Image()); err != nil {
		log.WithError(err).Debug("Preview failed")
	}
}

func displayName(path string) string {
	if path == "" {
		return "untitled"
	}
	return filepath.Base(path)
}
