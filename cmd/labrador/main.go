// Command labrador applies a resolution-independent Lab-space adjustment to
// an image and writes the result next to the input.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pictools/labrador/pkg/cli"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	engine := flag.String("engine", "", "filter executor to use (default from config)")
	output := flag.String("o", "", "output path (default <input>-adjusted.<ext>)")
	preview := flag.String("preview", "", "terminal preview: auto, always, or never")
	info := flag.Bool("info", false, "print image format, dimensions, and EXIF, then exit")
	update := flag.Bool("update", false, "check for a newer release and install it")
	noUpdateCheck := flag.Bool("no-update-check", false, "skip the post-run update check")
	version := flag.Bool("version", false, "print the version and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: labrador [flags] [image]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("labrador " + cli.Version)
		return
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := cli.NewLogger(*debug || cfg.Debug)

	os.Exit(cli.NewApp(cfg, log).Run(cli.Options{
		InputPath:     flag.Arg(0),
		OutputPath:    *output,
		Engine:        *engine,
		Preview:       *preview,
		InfoOnly:      *info,
		Update:        *update,
		NoUpdateCheck: *noUpdateCheck,
	}))
}
