package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// PromptLine prints prompt and reads one trimmed line from stdin.
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// SelectInputWithFzf launches fzf over the image files under startDir and
// returns the selected path.
//
// The preview pane gets a terminal-aware renderer: kitty icat when the kitty
// protocol is available, imgcat for iTerm2-style terminals, chafa otherwise.
// fzf's --preview takes a single command line, so fallbacks chain with ||
// and errors go to /dev/null.
func SelectInputWithFzf(startDir string) (string, error) {
	quotedDir := strconv.Quote(startDir)

	var previewCmd string
	switch {
	case isKitty():
		// Clear earlier placements first so images do not pile up.
		previewCmd = "printf \"\\x1b_Ga=d\\x1b\\\\\"; kitty +kitten icat --silent {} 2>/dev/null || chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	case isInlineImageCapable():
		previewCmd = "imgcat {} 2>/dev/null || chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	default:
		previewCmd = "chafa --fill=block --symbols=block -s 80x40 {} 2>/dev/null"
	}

	cmdStr := fmt.Sprintf(
		"find %s -type f \\( -iname '*.jpg' -o -iname '*.jpeg' -o -iname '*.png' -o -iname '*.gif' \\) | fzf --height 100%% --border --prompt='Image> ' --ansi --preview=%q --preview-window='right:60%%'",
		quotedDir,
		previewCmd,
	)
	cmd := exec.Command("bash", "-lc", cmdStr)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		clearKittyImages()
		return "", fmt.Errorf("run fzf: %w", err)
	}
	clearKittyImages()

	selection := strings.TrimSpace(out.String())
	if selection == "" {
		return "", fmt.Errorf("no file selected")
	}
	return selection, nil
}

// RequestInputPath asks for an image path interactively, through fzf when it
// is on PATH and a plain prompt otherwise.
func RequestInputPath() (string, error) {
	if _, err := exec.LookPath("fzf"); err == nil {
		if path, err := SelectInputWithFzf("."); err == nil {
			return path, nil
		}
	}
	return PromptLine("Image to adjust (leave empty to cancel): ")
}

// clearKittyImages emits the kitty graphics delete sequence. Terminals that
// do not implement the protocol ignore it.
func clearKittyImages() {
	fmt.Fprint(os.Stdout, "\x1b_Ga=d\x1b\\")
}
