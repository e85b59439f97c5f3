package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"

	"golang.org/x/image/draw"
)

const jpegQuality = 90

// Rotate turns img counter-clockwise by a multiple of 90 degrees, growing the canvas
// to fit. Other angles are rejected.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	deg := ((degrees % 360) + 360) % 360
	if deg == 0 {
		return img, nil
	}
	if deg%90 != 0 {
		return nil, fmt.Errorf("rotate: unsupported angle %d", degrees)
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	var dst *image.RGBA
	if deg == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			switch deg {
			case 90:
				dst.Set(y, w-1-x, c)
			case 180:
				dst.Set(w-1-x, h-1-y, c)
			case 270:
				dst.Set(h-1-y, x, c)
			}
		}
	}
	return dst, nil
}

// Downscale shrinks img so that it has at most maxPixels pixels, keeping the aspect ratio.
func Downscale(img image.Image, maxPixels int) image.Image {
	b := img.Bounds()
	total := b.Dx() * b.Dy()
	if maxPixels <= 0 || total <= maxPixels {
		return img
	}
	scale := math.Sqrt(float64(maxPixels) / float64(total))
	newW := max(1, int(float64(b.Dx())*scale))
	newH := max(1, int(float64(b.Dy())*scale))
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Prepare decodes a photo, rotates and downsizes it and re-encodes it as JPEG.
func Prepare(data []byte, degrees, maxPixels int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	img, err = Rotate(img, degrees)
	if err != nil {
		return nil, err
	}
	img = Downscale(img, maxPixels)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out.Bytes(), nil
}

// PrepareFile rewrites the photo at path in place.
func PrepareFile(path string, degrees, maxPixels int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	out, err := Prepare(data, degrees, maxPixels)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, out, 0o644)
}
