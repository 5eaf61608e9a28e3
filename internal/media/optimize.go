package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register the WebP decoder
)

// Optimizer bounds image dimensions and re-encodes for delivery. Opaque
// images become JPEG at Quality; images with transparency stay PNG.
type Optimizer struct {
	MaxDimension int
	Quality      int
}

// allowedTypes are the sniffed content types accepted for upload.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SniffImage returns the content type of data when it is an accepted image.
func SniffImage(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if !allowedTypes[ct] {
		return "", ErrUnsupportedImage
	}
	return ct, nil
}

// Optimize decodes data, scales it down so that neither edge exceeds
// MaxDimension, and re-encodes it. It returns the encoded bytes and their
// content type.
func (o Optimizer) Optimize(data []byte) ([]byte, string, error) {
	if _, err := SniffImage(data); err != nil {
		return nil, "", err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", ErrUnsupportedImage
	}

	img := o.fit(src)

	var buf bytes.Buffer
	if opaque(img) {
		q := o.Quality
		if q <= 0 || q > 100 {
			q = jpeg.DefaultQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "image/png", nil
}

// fit scales src down to MaxDimension on its longest edge, keeping the
// aspect ratio. Smaller images are returned unchanged.
func (o Optimizer) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	limit := o.MaxDimension
	if limit <= 0 || (w <= limit && h <= limit) {
		return src
	}
	nw, nh := limit, limit
	if w >= h {
		nh = max(1, h*limit/w)
	} else {
		nw = max(1, w*limit/h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return true
}
