package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxEdge bounds the longest side of an uploaded photo.
const MaxEdge = 1280

// Quality matches the 0.8 compression the capture screens used.
const Quality = 80

// ErrUnsupportedFormat is returned for anything that is not JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Normalize turns captured JPEG or PNG bytes into a JPEG no larger than
// MaxEdge on its longest side. The format is sniffed from the bytes.
func Normalize(data []byte) ([]byte, error) {
	mime, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if mime == "image/png" {
		img, err = png.Decode(bytes.NewReader(data))
	} else {
		img, err = jpeg.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxEdge), &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Sniff returns the MIME type of data, or ErrUnsupportedFormat when it is
// neither JPEG nor PNG.
func Sniff(data []byte) (string, error) {
	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png":
		return mime, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
}

// fit scales img down so neither side exceeds maxEdge, keeping the aspect ratio.
func fit(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return img
	}

	nw, nh := maxEdge, maxEdge
	if w > h {
		nh = max(1, h*maxEdge/w)
	} else {
		nw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
