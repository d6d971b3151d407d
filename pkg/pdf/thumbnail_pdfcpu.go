package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pyhub-apps/mediakiosk/pkg/raster"
)

// ErrNoThumbnail means the first page carries no usable /Thumb image.
var ErrNoThumbnail = errors.New("no embedded thumbnail")

// EmbeddedThumbnail returns the /Thumb image of page 1 at its native size.
// Only 8-bit DeviceRGB and DeviceGray samples are supported, Flate or DCT encoded.
func EmbeddedThumbnail(filepath string) (thumb *raster.Raster, err error) {
	defer func() {
		if r := recover(); r != nil {
			thumb, err = nil, fmt.Errorf("failed to read thumbnail: %v", r)
		}
	}()

	ctx, err := api.ReadContextFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if ctx.PageCount < 1 {
		return nil, ErrNoThumbnail
	}

	pageDict, _, _, err := ctx.PageDict(1, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get page dict: %w", err)
	}
	obj, found := pageDict.Find("Thumb")
	if !found || obj == nil {
		return nil, ErrNoThumbnail
	}

	sd, _, err := ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference thumbnail: %w", err)
	}
	if sd == nil {
		return nil, ErrNoThumbnail
	}
	return decodeThumbnail(sd)
}

func decodeThumbnail(sd *types.StreamDict) (*raster.Raster, error) {
	for _, f := range sd.FilterPipeline {
		if f.Name == "DCTDecode" {
			img, err := jpeg.Decode(bytes.NewReader(sd.Raw))
			if err != nil {
				return nil, fmt.Errorf("failed to decode DCT thumbnail: %w", err)
			}
			return raster.FromImage(img), nil
		}
	}

	w, h := sd.IntEntry("Width"), sd.IntEntry("Height")
	if w == nil || h == nil || *w <= 0 || *h <= 0 {
		return nil, ErrNoThumbnail
	}
	if bpc := sd.IntEntry("BitsPerComponent"); bpc != nil && *bpc != 8 {
		return nil, fmt.Errorf("unsupported thumbnail depth %d", *bpc)
	}
	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("failed to decode thumbnail stream: %w", err)
	}
	return samplesToRaster(sd.Content, *w, *h)
}

// samplesToRaster converts packed 8-bit RGB or gray samples.
func samplesToRaster(samples []byte, w, h int) (*raster.Raster, error) {
	var comps int
	switch len(samples) {
	case w * h * 3:
		comps = 3
	case w * h:
		comps = 1
	default:
		return nil, fmt.Errorf("thumbnail has %d bytes, want %d or %d", len(samples), w*h*3, w*h)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * comps
			if comps == 3 {
				img.SetRGBA(x, y, color.RGBA{samples[i], samples[i+1], samples[i+2], 0xff})
			} else {
				img.SetRGBA(x, y, color.RGBA{samples[i], samples[i], samples[i], 0xff})
			}
		}
	}
	return raster.FromImage(img), nil
}
