package cli

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pictools/labrador/pkg/engine"
)

// JPEG markers the loader cares about.
const (
	markerAPP1 = 0xE1
	markerSOS  = 0xDA
)

var (
	jpegSOI    = []byte{0xFF, 0xD8}
	exifHeader = []byte("Exif\x00\x00")
)

// AppSegment is one APPn segment lifted out of a JPEG stream: the marker
// byte (0xE0..0xEF) and the payload after the two length bytes.
type AppSegment struct {
	Marker  byte
	Payload []byte
}

// SourceInfo describes what LoadImage found alongside the pixels.
type SourceInfo struct {
	Format       string       // "jpeg", "png", "gif"
	Segments     []AppSegment // JPEG APPn segments, in file order
	EXIF         *EXIF        // parsed subset, nil when absent
	AutoOriented bool         // pixels were rotated per the orientation tag
}

// LoadImage reads path, decodes it, and applies the EXIF orientation so the
// returned pixels are upright. JPEG APPn segments are captured so SaveImage
// can re-embed them.
func LoadImage(path string) (image.Image, *SourceInfo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	info := &SourceInfo{}
	if bytes.HasPrefix(b, jpegSOI) {
		info.Format = "jpeg"
		if segs, err := parseJPEGAppSegments(b); err == nil {
			info.Segments = segs
		}
		if ex, err := ExtractEXIF(b); err == nil {
			info.EXIF = ex
		}
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if info.Format == "" {
		info.Format = format
	}
	if info.EXIF != nil && info.EXIF.Orientation > 1 && info.EXIF.Orientation <= 8 {
		img = engine.AutoOrient(img, info.EXIF.Orientation)
		info.AutoOriented = true
	}
	return img, info, nil
}

// SaveOptions carries the metadata side of a save.
type SaveOptions struct {
	Segments         []AppSegment
	ResetOrientation bool // rewrite the EXIF orientation tag to 1
	JPEGQuality      int  // 1..100; zero means the package default
}

const defaultJPEGQuality = 92

// SaveImage encodes img to path with the format chosen by extension (.png,
// .jpg/.jpeg, .gif; anything else gets PNG). JPEG output re-embeds
// opts.Segments right after the SOI marker.
func SaveImage(path string, img image.Image, opts SaveOptions) error {
	if img == nil {
		return fmt.Errorf("nil image")
	}
	quality := opts.JPEGQuality
	if quality == 0 {
		quality = defaultJPEGQuality
	}
	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return err
		}
		segs := opts.Segments
		if opts.ResetOrientation {
			segs = resetOrientationTag(segs)
		}
		out, err := insertAppSegmentsIntoJPEG(buf.Bytes(), segs)
		if err != nil {
			return err
		}
		buf.Reset()
		buf.Write(out)
	case ".gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// DefaultOutputPath derives "name-<suffix>.ext" next to the input file.
func DefaultOutputPath(input, suffix string) string {
	if suffix == "" {
		suffix = "adjusted"
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-" + suffix + ext
}

// parseJPEGAppSegments lifts the APPn segments out of a JPEG stream, in file
// order, stopping at start-of-scan.
func parseJPEGAppSegments(data []byte) ([]AppSegment, error) {
	if !bytes.HasPrefix(data, jpegSOI) {
		return nil, fmt.Errorf("not a jpeg stream")
	}
	var segs []AppSegment
	i := len(jpegSOI)
	for i+4 <= len(data) {
		if data[i] != 0xFF || data[i+1] == 0xFF {
			i++
			continue
		}
		marker := data[i+1]
		if marker == markerSOS {
			break
		}
		segLen := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		if segLen < 2 || i+2+segLen > len(data) {
			return nil, fmt.Errorf("truncated 0x%02X segment at offset %d", marker, i)
		}
		if marker >= 0xE0 && marker <= 0xEF {
			segs = append(segs, AppSegment{
				Marker:  marker,
				Payload: append([]byte(nil), data[i+4:i+2+segLen]...),
			})
		}
		i += 2 + segLen
	}
	return segs, nil
}

// insertAppSegmentsIntoJPEG writes segs directly after the SOI marker so
// they precede the tables the encoder wrote.
func insertAppSegmentsIntoJPEG(data []byte, segs []AppSegment) ([]byte, error) {
	if !bytes.HasPrefix(data, jpegSOI) {
		return nil, fmt.Errorf("not a jpeg stream")
	}
	var out bytes.Buffer
	out.Grow(len(data))
	out.Write(jpegSOI)
	for _, s := range segs {
		if s.Marker < 0xE0 || s.Marker > 0xEF {
			return nil, fmt.Errorf("not an APPn marker: 0x%02X", s.Marker)
		}
		if len(s.Payload) > 0xFFFF-2 {
			return nil, fmt.Errorf("APP%d payload too large: %d bytes", s.Marker-0xE0, len(s.Payload))
		}
		out.WriteByte(0xFF)
		out.WriteByte(s.Marker)
		var segLen [2]byte
		binary.BigEndian.PutUint16(segLen[:], uint16(len(s.Payload)+2))
		out.Write(segLen[:])
		out.Write(s.Payload)
	}
	out.Write(data[len(jpegSOI):])
	return out.Bytes(), nil
}

// resetOrientationTag returns segs with any EXIF orientation rewritten to 1.
// The pixels are already upright, so the next reader must not rotate again.
func resetOrientationTag(segs []AppSegment) []AppSegment {
	out := make([]AppSegment, len(segs))
	copy(out, segs)
	for i, s := range out {
		if s.Marker != markerAPP1 || !bytes.HasPrefix(s.Payload, exifHeader) {
			continue
		}
		payload := append([]byte(nil), s.Payload...)
		if off, order, ok := orientationValueOffset(payload, len(exifHeader)); ok {
			order.PutUint16(payload[off:off+2], 1)
			out[i].Payload = payload
		}
	}
	return out
}

// orientationValueOffset locates the 2-byte value of the orientation tag in
// IFD0. The returned offset is absolute within data.
func orientationValueOffset(data []byte, base int) (int, binary.ByteOrder, bool) {
	r, err := newTIFFReader(data, base)
	if err != nil {
		return 0, nil, false
	}
	off := int(r.order.Uint32(data[base+4 : base+8]))
	abs := base + off
	if off <= 0 || abs+2 > len(data) {
		return 0, nil, false
	}
	n := int(r.order.Uint16(data[abs : abs+2]))
	for e := 0; e < n; e++ {
		ent := abs + 2 + e*12
		if ent+12 > len(data) {
			break
		}
		if r.order.Uint16(data[ent:ent+2]) == tagOrientation &&
			r.order.Uint16(data[ent+2:ent+4]) == tiffShort {
			return ent + 8, r.order, true
		}
	}
	return 0, nil, false
}

// extractJPEGOrientation reads the orientation tag (1..8) from whole-file
// JPEG bytes.
func extractJPEGOrientation(data []byte) (int, error) {
	ex, err := ExtractEXIF(data)
	if err != nil {
		return 0, err
	}
	if ex == nil || ex.Orientation == 0 {
		return 0, fmt.Errorf("orientation tag not found")
	}
	return ex.Orientation, nil
}
