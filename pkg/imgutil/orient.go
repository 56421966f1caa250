package imgutil

import (
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	exif "github.com/dsoprea/go-exif/v3"
)

// ReadOrientation extracts the EXIF Orientation value (1-8) from rs.
// Missing or unreadable EXIF yields 1, the identity orientation.
func ReadOrientation(rs io.ReadSeeker) int {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 1
	}

	rawExif, err := exif.SearchAndExtractExifWithReader(rs)
	if err != nil {
		return 1
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearch(rawExif, nil, true)
	if err != nil {
		return 1
	}

	for _, tag := range tags {
		if tag.TagName != "Orientation" || strings.Contains(tag.IfdPath, "Thumbnail") {
			continue
		}
		if values, ok := tag.Value.([]uint16); ok && len(values) > 0 {
			o := int(values[0])
			if o >= 1 && o <= 8 {
				return o
			}
		}
	}

	return 1
}

// ApplyOrientation rotates/flips img so that EXIF orientation o renders
// upright. Unknown values pass the image through unchanged.
func ApplyOrientation(img *image.NRGBA, o int) *image.NRGBA {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		// 90 degrees clockwise
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}
