// Package export writes canvas rasters to image files.
//
// The format follows the file extension: PNG keeps the full 16-bit depth of
// intensity images, TIFF is written deflate-compressed, and JPEG is offered
// for quick previews only since it drops to 8 bits.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"

	"syncell/pkg/errors"
)

// Format identifies an output encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
	FormatJPEG Format = "jpeg"
)

// FormatFor picks the encoding from the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported image extension %q (use .png, .tif or .jpg)", filepath.Ext(path))
}

// Save encodes img to path, creating parent directories as needed.
func Save(path string, img image.Image) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	switch format {
	case FormatPNG:
		err = png.Encode(file, img)
	case FormatTIFF:
		err = tiff.Encode(file, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatJPEG:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		file.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "error encoding %s", path)
	}
	return file.Close()
}

// Load decodes a PNG or TIFF file written by Save.
func Load(path string) (image.Image, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var img image.Image
	switch format {
	case FormatPNG:
		img, err = png.Decode(file)
	case FormatTIFF:
		img, err = tiff.Decode(file)
	case FormatJPEG:
		img, err = jpeg.Decode(file)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "error decoding %s", path)
	}
	return img, nil
}

// Stretch rescales img linearly so its smallest value maps to 0 and its
// largest to 65535. A constant image is returned as an unchanged copy.
func Stretch(img *image.Gray16) *image.Gray16 {
	b := img.Bounds()
	out := image.NewGray16(b)

	lo, hi := uint16(0xffff), uint16(0)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := img.Gray16At(x, y).Y
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := img.Gray16At(x, y).Y
			if hi > lo {
				v = uint16(uint32(v-lo) * 0xffff / uint32(hi-lo))
			}
			out.SetGray16(x, y, color.Gray16{Y: v})
		}
	}
	return out
}

// LabelPreview spreads label identifiers over the 8-bit range so that
// neighbouring cells are distinguishable by eye. Background stays 0 and the
// largest identifier present maps to 255.
func LabelPreview(label *image.Gray) *image.Gray {
	b := label.Bounds()
	out := image.NewGray(b)

	var top uint8
	for _, v := range label.Pix {
		top = max(top, v)
	}
	if top == 0 {
		return out
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := label.GrayAt(x, y).Y
			out.SetGray(x, y, color.Gray{Y: uint8(uint32(v) * 255 / uint32(top))})
		}
	}
	return out
}
