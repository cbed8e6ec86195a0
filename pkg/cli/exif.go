package cli

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// EXIF is the typed subset of tags surfaced by -info.
type EXIF struct {
	Make             string
	Model            string
	Software         string
	Orientation      int
	DateTime         string
	DateTimeOriginal string
	ExposureTime     string // raw "num/den"
	FNumber          float64
	ISOSpeed         int
	FocalLength      float64
	LensModel        string
}

// Summary renders the populated fields, one per line.
func (e *EXIF) Summary() string {
	var b strings.Builder
	add := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	add("Make", e.Make)
	add("Model", e.Model)
	add("Software", e.Software)
	if e.Orientation != 0 {
		add("Orientation", strconv.Itoa(e.Orientation))
	}
	add("DateTime", e.DateTime)
	add("DateTimeOriginal", e.DateTimeOriginal)
	if e.ExposureTime != "" {
		add("ExposureTime", e.ExposureTime+" sec")
	}
	if e.FNumber != 0 {
		add("FNumber", fmt.Sprintf("f/%.1f", e.FNumber))
	}
	if e.ISOSpeed != 0 {
		add("ISOSpeed", strconv.Itoa(e.ISOSpeed))
	}
	if e.FocalLength != 0 {
		add("FocalLength", fmt.Sprintf("%.1f mm", e.FocalLength))
	}
	add("LensModel", e.LensModel)
	return strings.TrimRight(b.String(), "\n")
}

// TIFF field types the walker decodes.
const (
	tiffByte     = 1
	tiffASCII    = 2
	tiffShort    = 3
	tiffLong     = 4
	tiffRational = 5
)

// Tag ids lifted into EXIF.
const (
	tagMake             = 0x010F
	tagModel            = 0x0110
	tagOrientation      = 0x0112
	tagSoftware         = 0x0131
	tagDateTime         = 0x0132
	tagExifIFD          = 0x8769
	tagExposureTime     = 0x829A
	tagFNumber          = 0x829D
	tagISOSpeed         = 0x8827
	tagDateTimeOriginal = 0x9003
	tagFocalLength      = 0x920A
	tagLensModel        = 0xA434
)

// IFD identities for tag keys. A key combines the owning IFD with the tag id
// so one flat map holds the whole tree.
const (
	ifdPrimary = iota
	ifdExif
)

func tagKey(ifd int, tag uint16) uint32 { return uint32(ifd)<<16 | uint32(tag) }

// ParseEXIF decodes the typed subset from an APP1 Exif payload, the bytes
// after the segment length starting with "Exif\x00\x00".
func ParseEXIF(payload []byte) (*EXIF, error) {
	if !bytes.HasPrefix(payload, exifHeader) {
		return nil, fmt.Errorf("not an Exif payload")
	}
	r, err := newTIFFReader(payload, len(exifHeader))
	if err != nil {
		return nil, err
	}
	tags := r.readTags()

	ex := &EXIF{}
	get := func(ifd int, tag uint16) string { return tags[tagKey(ifd, tag)] }
	ex.Make = get(ifdPrimary, tagMake)
	ex.Model = get(ifdPrimary, tagModel)
	ex.Software = get(ifdPrimary, tagSoftware)
	ex.DateTime = get(ifdPrimary, tagDateTime)
	if v := get(ifdPrimary, tagOrientation); v != "" {
		if n, err := strconv.Atoi(firstField(v)); err == nil {
			ex.Orientation = n
		}
	}
	ex.DateTimeOriginal = get(ifdExif, tagDateTimeOriginal)
	ex.LensModel = get(ifdExif, tagLensModel)
	ex.ExposureTime = firstField(get(ifdExif, tagExposureTime))
	if v := get(ifdExif, tagFNumber); v != "" {
		if f, err := parseRational(firstField(v)); err == nil {
			ex.FNumber = f
		}
	}
	if v := get(ifdExif, tagISOSpeed); v != "" {
		if n, err := strconv.Atoi(firstField(v)); err == nil {
			ex.ISOSpeed = n
		}
	}
	if v := get(ifdExif, tagFocalLength); v != "" {
		if f, err := parseRational(firstField(v)); err == nil {
			ex.FocalLength = f
		}
	}
	return ex, nil
}

// ExtractEXIF pulls the typed subset out of whole-file JPEG bytes. Returns
// nil with no error when the file carries no Exif segment.
func ExtractEXIF(data []byte) (*EXIF, error) {
	segs, err := parseJPEGAppSegments(data)
	if err != nil {
		return nil, err
	}
	for _, s := range segs {
		if s.Marker == markerAPP1 && bytes.HasPrefix(s.Payload, exifHeader) {
			return ParseEXIF(s.Payload)
		}
	}
	return nil, nil
}

// firstField cuts a comma-joined multi-value down to its first element.
func firstField(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}

// parseRational parses a single "num/den" into a float.
func parseRational(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, fmt.Errorf("invalid rational %q", s)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator in %q", s)
	}
	return n / d, nil
}

// tiffReader walks the IFD chain of a TIFF blob. Offsets inside the blob are
// relative to base, per the TIFF offset model.
type tiffReader struct {
	data    []byte
	base    int
	order   binary.ByteOrder
	visited map[int]bool
}

func newTIFFReader(data []byte, base int) (*tiffReader, error) {
	if base < 0 || base+8 > len(data) {
		return nil, fmt.Errorf("tiff header truncated")
	}
	var order binary.ByteOrder
	switch {
	case data[base] == 'I' && data[base+1] == 'I':
		order = binary.LittleEndian
	case data[base] == 'M' && data[base+1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("unknown tiff byte order")
	}
	if order.Uint16(data[base+2:base+4]) != 0x002A {
		return nil, fmt.Errorf("bad tiff magic")
	}
	return &tiffReader{data: data, base: base, order: order, visited: map[int]bool{}}, nil
}

// readTags returns every supported tag under its keyed id. Truncated or
// cyclic structures yield partial results, not errors.
func (r *tiffReader) readTags() map[uint32]string {
	tags := map[uint32]string{}
	off := int(r.order.Uint32(r.data[r.base+4 : r.base+8]))
	if off > 0 && r.base+off < len(r.data) {
		r.readIFD(off, ifdPrimary, tags)
	}
	return tags
}

func (r *tiffReader) readIFD(off, ifd int, tags map[uint32]string) {
	abs := r.base + off
	if abs+2 > len(r.data) || r.visited[abs] {
		return
	}
	r.visited[abs] = true
	n := int(r.order.Uint16(r.data[abs : abs+2]))
	entries := abs + 2
	for e := 0; e < n; e++ {
		ent := entries + e*12
		if ent+12 > len(r.data) {
			return
		}
		tag := r.order.Uint16(r.data[ent : ent+2])
		typ := r.order.Uint16(r.data[ent+2 : ent+4])
		count := int(r.order.Uint32(r.data[ent+4 : ent+8]))
		if tag == tagExifIFD {
			sub := int(r.order.Uint32(r.data[ent+8 : ent+12]))
			if sub > 0 && r.base+sub < len(r.data) {
				r.readIFD(sub, ifdExif, tags)
			}
			continue
		}
		raw, ok := r.valueBytes(ent, typ, count)
		if !ok {
			continue
		}
		if s := decodeTagValue(r.order, typ, count, raw); s != "" {
			tags[tagKey(ifd, tag)] = s
		}
	}
	// trailing pointer to the next IFD in the chain
	next := entries + n*12
	if next+4 <= len(r.data) {
		if nextOff := int(r.order.Uint32(r.data[next : next+4])); nextOff > 0 && r.base+nextOff < len(r.data) {
			r.readIFD(nextOff, ifd, tags)
		}
	}
}

// typeSize is the byte width of one value of a TIFF field type, zero for
// types the walker does not decode.
func typeSize(typ uint16) int {
	switch typ {
	case tiffByte, tiffASCII:
		return 1
	case tiffShort:
		return 2
	case tiffLong:
		return 4
	case tiffRational:
		return 8
	}
	return 0
}

// valueBytes resolves an entry's value: inline when it fits the 4-byte
// field, through the value offset otherwise.
func (r *tiffReader) valueBytes(ent int, typ uint16, count int) ([]byte, bool) {
	size := typeSize(typ)
	if size == 0 || count < 0 {
		return nil, false
	}
	total := size * count
	if total <= 4 {
		return r.data[ent+8 : ent+8+total], true
	}
	off := int(r.order.Uint32(r.data[ent+8 : ent+12]))
	if off <= 0 || r.base+off+total > len(r.data) {
		return nil, false
	}
	return r.data[r.base+off : r.base+off+total], true
}

func decodeTagValue(order binary.ByteOrder, typ uint16, count int, raw []byte) string {
	switch typ {
	case tiffASCII:
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		return string(raw)
	case tiffByte:
		parts := make([]string, 0, len(raw))
		for _, b := range raw {
			parts = append(parts, strconv.Itoa(int(b)))
		}
		return strings.Join(parts, ",")
	case tiffShort:
		parts := make([]string, 0, count)
		for i := 0; i+2 <= len(raw); i += 2 {
			parts = append(parts, strconv.Itoa(int(order.Uint16(raw[i:i+2]))))
		}
		return strings.Join(parts, ",")
	case tiffLong:
		parts := make([]string, 0, count)
		for i := 0; i+4 <= len(raw); i += 4 {
			parts = append(parts, strconv.FormatUint(uint64(order.Uint32(raw[i:i+4])), 10))
		}
		return strings.Join(parts, ",")
	case tiffRational:
		parts := make([]string, 0, count)
		for i := 0; i+8 <= len(raw); i += 8 {
			num := order.Uint32(raw[i : i+4])
			den := order.Uint32(raw[i+4 : i+8])
			parts = append(parts, fmt.Sprintf("%d/%d", num, den))
		}
		return strings.Join(parts, ",")
	}
	return ""
}
