package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Terminal preview for the kitty graphics protocol and the iTerm2-style
// inline image OSC, with an ANSI half-block fallback for everything else.
//
//   - kitty (or a compatible terminal such as ghostty): chunked base64 PNG
//     inside ESC _G ... ESC \ sequences.
//   - iTerm2, WezTerm, Warp, Tabby, VSCode: the OSC 1337 File sequence.
//   - anything with truecolor support: two pixels per character cell using
//     the upper half block with 24-bit foreground and background colors.
//
// PREVIEW_BACKEND forces a backend: "kitty", "inline", or "blocks".

// PreviewSize conveys a target placement for terminal preview backends.
type PreviewSize struct {
	Cols        int // terminal character columns
	Rows        int // terminal character rows
	PixelWidth  int // approximate pixel width (Cols * cell width)
	PixelHeight int // approximate pixel height (Rows * cell height)
}

func isKitty() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	if strings.Contains(term, "kitty") || strings.Contains(term, "ghostty") {
		return true
	}
	// Konsole implements parts of the protocol via its kitty compatibility mode.
	return os.Getenv("KONSOLE_VERSION") != ""
}

// isInlineImageCapable detects terminals that implement the iTerm2-style
// inline image OSC. Heuristic, based on TERM_PROGRAM and TERM substrings.
func isInlineImageCapable() bool {
	switch os.Getenv("TERM_PROGRAM") {
	case "iTerm.app", "WezTerm", "Warp", "Hyper", "vscode", "VSCode", "Tabby":
		return true
	}
	if os.Getenv("ITERM_SESSION_ID") != "" {
		return true
	}
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "wezterm") || strings.Contains(term, "warp") ||
		strings.Contains(term, "tabby") || strings.Contains(term, "vscode")
}

func stdoutIsTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func terminalColumns() int {
	if v := os.Getenv("COLUMNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 80
}

// PreviewSupported reports whether the terminal can likely show a preview.
// The half-block fallback only needs color support, so anything beyond a
// dumb terminal qualifies.
func PreviewSupported() bool {
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// PreviewImage renders img into w using the best protocol the terminal
// supports.
func PreviewImage(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	size := computePreviewSize(img, terminalColumns())
	switch strings.ToLower(os.Getenv("PREVIEW_BACKEND")) {
	case "kitty":
		return writeKittyImage(w, img, size)
	case "inline", "iterm":
		return writeInlineImage(w, img, size)
	case "blocks":
		return writeHalfBlocks(w, img, size)
	}
	switch {
	case isKitty():
		return writeKittyImage(w, img, size)
	case isInlineImageCapable():
		return writeInlineImage(w, img, size)
	}
	return writeHalfBlocks(w, img, size)
}

// computePreviewSize maps an image's pixel dimensions into a target cell
// area, preserving aspect ratio and never scaling up.
func computePreviewSize(img image.Image, maxCols int) PreviewSize {
	// Character cell pixel assumptions, kept as constants rather than
	// queried from the terminal.
	const charW = 8
	const charH = 16
	const minCols = 6
	const minRows = 3
	const maxRows = 40

	if maxCols < minCols {
		maxCols = minCols
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	maxPixelW := maxCols * charW
	maxPixelH := maxRows * charH

	scaleW := float64(maxPixelW) / float64(w)
	scaleH := float64(maxPixelH) / float64(h)
	scale := math.Min(1.0, math.Min(scaleW, scaleH))

	cols := int(math.Round(float64(w) * scale / charW))
	rows := int(math.Round(float64(h) * scale / charH))

	if cols < minCols {
		cols = minCols
	}
	if rows < minRows {
		rows = minRows
	}

	return PreviewSize{
		Cols:        cols,
		Rows:        rows,
		PixelWidth:  cols * charW,
		PixelHeight: rows * charH,
	}
}

// postImageNewlines picks how many lines to advance after an image so the
// next prompt lands under it, clamped to avoid a large gap.
func postImageNewlines(requestedRows int) int {
	switch {
	case requestedRows <= 0:
		return 1
	case requestedRows <= 2:
		return 1
	case requestedRows <= 6:
		return 2
	case requestedRows <= 20:
		return 3
	}
	return 4
}

// writeKittyImage sends a PNG through the kitty graphics protocol, chunking
// the base64 payload into 4096-byte pieces as the protocol requires. The
// first chunk carries the control keys: a=T transmit and display, f=100 PNG,
// t=d direct payload, q=2 suppress responses, c and r the placement area.
func writeKittyImage(w io.Writer, img image.Image, size PreviewSize) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	enc := base64.StdEncoding.EncodeToString(buf.Bytes())
	const chunkSize = 4096

	first := true
	for pos := 0; pos < len(enc); pos += chunkSize {
		end := pos + chunkSize
		if end > len(enc) {
			end = len(enc)
		}
		chunk := enc[pos:end]
		mVal := "0"
		if end < len(enc) {
			mVal = "1"
		}
		var err error
		if first {
			_, err = fmt.Fprintf(w, "\x1b_Ga=T,f=100,t=d,q=2,c=%d,r=%d,m=%s;%s\x1b\\",
				size.Cols, size.Rows, mVal, chunk)
			first = false
		} else {
			_, err = fmt.Fprintf(w, "\x1b_Gm=%s;%s\x1b\\", mVal, chunk)
		}
		if err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, strings.Repeat("\n", postImageNewlines(size.Rows)))
	return err
}

// writeInlineImage emits the iTerm2-style inline image OSC 1337 sequence.
func writeInlineImage(w io.Writer, img image.Image, size PreviewSize) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("png encode: %w", err)
	}
	enc := base64.StdEncoding.EncodeToString(buf.Bytes())
	_, err := fmt.Fprintf(w, "\x1b]1337;File=name=preview.png;inline=1;size=%d;width=%dpx;height=%dpx;:%s\a",
		buf.Len(), size.PixelWidth, size.PixelHeight, enc)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.Repeat("\n", postImageNewlines(0)))
	return err
}

// writeHalfBlocks renders two pixels per character cell with the upper half
// block, foreground color for the top pixel and background for the bottom.
func writeHalfBlocks(w io.Writer, img image.Image, size PreviewSize) error {
	scaled := image.NewNRGBA(image.Rect(0, 0, size.Cols, size.Rows*2))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	var b strings.Builder
	for y := 0; y < size.Rows; y++ {
		for x := 0; x < size.Cols; x++ {
			top := scaled.NRGBAAt(x, 2*y)
			bot := scaled.NRGBAAt(x, 2*y+1)
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bot.R, bot.G, bot.B)
		}
		b.WriteString("\x1b[0m\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
