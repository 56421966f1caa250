package capability

import (
	"os/exec"
	"sort"
	"strings"
)

// Capability identifies the decoder backend a file extension requires.
type Capability int

const (
	None Capability = iota
	Raster
	HEIF
	RAW
)

func (c Capability) String() string {
	switch c {
	case Raster:
		return "raster"
	case HEIF:
		return "heif"
	case RAW:
		return "raw"
	default:
		return "none"
	}
}

var rasterExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
	".webp": true,
	".gif":  true,
}

var heifExts = map[string]bool{
	".heif": true,
	".heic": true,
	".hif":  true,
}

var rawExts = map[string]bool{
	".cr2": true,
	".cr3": true,
	".nef": true,
	".arw": true,
	".dng": true,
	".raf": true,
	".orf": true,
	".rw2": true,
}

// ForExtension maps a file extension (with or without leading dot, any
// case) to the capability required to decode it.
func ForExtension(ext string) Capability {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	switch {
	case rasterExts[ext]:
		return Raster
	case heifExts[ext]:
		return HEIF
	case rawExts[ext]:
		return RAW
	default:
		return None
	}
}

// Extensions returns every known extension sorted by name.
func Extensions() []string {
	exts := make([]string, 0, len(rasterExts)+len(heifExts)+len(rawExts))
	for ext := range rasterExts {
		exts = append(exts, ext)
	}
	for ext := range heifExts {
		exts = append(exts, ext)
	}
	for ext := range rawExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Snapshot records which optional decoder backends were found at startup.
// It is probed once and passed by reference into the pipeline; the zero
// value means raster-only support.
type Snapshot struct {
	// HEIFTool is the resolved path of the libheif decoder CLI, empty
	// when none was found.
	HEIFTool string
	// RAWTool is the resolved path of the dcraw-compatible CLI, empty
	// when none was found.
	RAWTool string
}

// Probe locates the optional decoder tools on PATH. Raster decoding is
// built in and always available.
func Probe() Snapshot {
	snap := Snapshot{}
	for _, name := range []string{"heif-dec", "heif-convert"} {
		if path, err := exec.LookPath(name); err == nil {
			snap.HEIFTool = path
			break
		}
	}
	for _, name := range []string{"dcraw", "dcraw_emu"} {
		if path, err := exec.LookPath(name); err == nil {
			snap.RAWTool = path
			break
		}
	}
	return snap
}

// Available reports whether files requiring the given capability can be
// decoded under this snapshot.
func (s Snapshot) Available(c Capability) bool {
	switch c {
	case Raster:
		return true
	case HEIF:
		return s.HEIFTool != ""
	case RAW:
		return s.RAWTool != ""
	default:
		return false
	}
}
