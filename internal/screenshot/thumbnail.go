// Package screenshot stores preview captures and downscales them into
// fixed-size history thumbnails.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// Default thumbnail box. Aspect-fill keeps the canvas fixed regardless of
// the capture's aspect ratio.
const (
	ThumbWidth  = 240
	ThumbHeight = 160
)

// ErrBadDataURL is returned when a capture payload is not a decodable
// image data URL.
var ErrBadDataURL = errors.New("screenshot: malformed image data URL")

// Thumbnail decodes an image data URL and re-encodes it as a PNG data URL
// scaled to exactly w by h pixels. The source is center-cropped to the
// target aspect ratio first, so the output canvas size never varies.
func Thumbnail(dataURL string, w, h int) (string, error) {
	if w <= 0 || h <= 0 {
		return "", fmt.Errorf("screenshot: invalid thumbnail box %dx%d", w, h)
	}

	raw, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}

	crop := centerCrop(src.Bounds(), float64(w)/float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return "", fmt.Errorf("screenshot: encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURL strips the data URL prefix and base64-decodes the payload.
func decodeDataURL(dataURL string) ([]byte, error) {
	if !strings.HasPrefix(dataURL, "data:image/") {
		return nil, ErrBadDataURL
	}
	_, b64, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return nil, ErrBadDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	return raw, nil
}

// centerCrop returns the largest sub-rectangle of bounds with the given
// aspect ratio, centered.
func centerCrop(bounds image.Rectangle, ratio float64) image.Rectangle {
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return bounds
	}

	cropW := w
	cropH := int(float64(w) / ratio)
	if cropH > h {
		cropH = h
		cropW = int(float64(h) * ratio)
	}

	x0 := bounds.Min.X + (w-cropW)/2
	y0 := bounds.Min.Y + (h-cropH)/2
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}
