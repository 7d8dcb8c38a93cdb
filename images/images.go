// Package images normalizes uploaded pictures into a single stored format.
//
// Whatever the admin uploads (png, jpeg, webp, static gif), the stored asset
// is always a JPEG sized to the requested profile, so the serving path never
// branches on source format.
package images

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

// MimeType is the mime type of every processed asset.
const MimeType = "image/jpeg"

type Fit int

const (
	// FitContain keeps the whole image within the bounds.
	FitContain Fit = iota
	// FitCover fills the bounds, cropping the overflow around the center.
	FitCover
)

// Profile is a normalization target. Images are never upscaled past their
// native resolution.
type Profile struct {
	MaxWidth  int
	MaxHeight int
	Fit       Fit
	Quality   int
}

var (
	// Portrait is used for ambassador photos.
	Portrait = Profile{MaxWidth: 800, MaxHeight: 800, Fit: FitContain, Quality: 80}
	// Cover is used for event and news cover images.
	Cover = Profile{MaxWidth: 1200, MaxHeight: 630, Fit: FitCover, Quality: 80}
	// CMSAsset is used for hero images and other large page furniture.
	CMSAsset = Profile{MaxWidth: 1920, MaxHeight: 1080, Fit: FitContain, Quality: 85}
)

// Process decodes raw upload bytes, resizes them per the profile and
// re-encodes. It returns the stored bytes and their mime type.
func Process(raw []byte, p Profile) ([]byte, string, error) {
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("empty image payload")
	}
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	var resized image.Image
	switch p.Fit {
	case FitCover:
		w, h := coverSize(src.Bounds().Dx(), src.Bounds().Dy(), p.MaxWidth, p.MaxHeight)
		resized = imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	default:
		// Fit only ever scales down, so small images pass through unchanged.
		resized = imaging.Fit(src, p.MaxWidth, p.MaxHeight, imaging.Lanczos)
	}

	// JPEG has no alpha channel; composite onto white before encoding.
	flat := imaging.New(resized.Bounds().Dx(), resized.Bounds().Dy(), color.White)
	flat = imaging.OverlayCenter(flat, resized, 1.0)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), MimeType, nil
}

// coverSize shrinks the target box so filling it never upscales the source.
func coverSize(srcW, srcH, targetW, targetH int) (int, int) {
	if srcW >= targetW && srcH >= targetH {
		return targetW, targetH
	}
	scaleW := float64(srcW) / float64(targetW)
	scaleH := float64(srcH) / float64(targetH)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	w := int(float64(targetW) * scale)
	h := int(float64(targetH) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
