package qr

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"docshield/internal/core/domain"
)

// Decoder extracts a QR payload from arbitrary-quality raster images by
// running an ordered, fixed list of preprocessing strategies and stopping at
// the first successful decode. Corrupted input can decode differently under
// different transforms, so first-match-wins is part of the contract, not an
// optimization. The decoder never consults the registry and never hashes.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

type strategy struct {
	name  string
	tier  int
	apply func(src *image.Gray) []image.Image
}

// strategies is the declared trial order. Tier 2 is only reached when tier 1
// exhausts.
func strategies() []strategy {
	return []strategy{
		{"direct", 1, func(g *image.Gray) []image.Image {
			return []image.Image{g}
		}},
		{"local_contrast", 1, func(g *image.Gray) []image.Image {
			return []image.Image{localEqualize(g, 8, 2.0)}
		}},
		{"smooth", 1, func(g *image.Gray) []image.Image {
			return []image.Image{blur(g, 0.8)}
		}},
		{"otsu", 1, func(g *image.Gray) []image.Image {
			return []image.Image{otsuThreshold(g)}
		}},
		{"morphology", 1, func(g *image.Gray) []image.Image {
			return []image.Image{morphOpen(morphClose(g))}
		}},
		{"equalize", 1, func(g *image.Gray) []image.Image {
			return []image.Image{equalizeHist(g)}
		}},
		{"invert", 1, func(g *image.Gray) []image.Image {
			return []image.Image{invertGray(g)}
		}},
		{"multi_scale", 1, func(g *image.Gray) []image.Image {
			return []image.Image{scale(g, 0.5), scale(g, 1.5), scale(g, 2.0)}
		}},
		{"strong_local_contrast", 2, func(g *image.Gray) []image.Image {
			return []image.Image{localEqualize(g, 8, 4.0)}
		}},
		{"gaussian_otsu", 2, func(g *image.Gray) []image.Image {
			return []image.Image{otsuThreshold(toGray(blur(g, 1.5)))}
		}},
		{"median", 2, func(g *image.Gray) []image.Image {
			return []image.Image{median3(g)}
		}},
		{"adaptive_threshold", 2, func(g *image.Gray) []image.Image {
			return []image.Image{adaptiveThreshold(g, 25, 10)}
		}},
		{"unsharp", 2, func(g *image.Gray) []image.Image {
			return []image.Image{sharpen(g, 2.0)}
		}},
		{"adaptive_morphology", 2, func(g *image.Gray) []image.Image {
			return []image.Image{morphOpen(morphClose(adaptiveThreshold(g, 25, 10)))}
		}},
	}
}

func (d *Decoder) Decode(ctx context.Context, data []byte) (domain.QRDecodeResult, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.QRDecodeResult{}, domain.WrapError(domain.ErrNoQRDetected, "decode image", err)
	}
	gray := toGray(img)

	for _, st := range strategies() {
		if err := ctx.Err(); err != nil {
			return domain.QRDecodeResult{}, err
		}
		for _, candidate := range st.apply(gray) {
			payload, ok := tryDecode(candidate)
			if !ok {
				continue
			}
			return domain.QRDecodeResult{
				Payload:  payload,
				Strategy: st.name,
				Tier:     st.tier,
			}, nil
		}
	}

	return domain.QRDecodeResult{}, domain.WrapError(
		domain.ErrNoQRDetected, "decode qr", errors.New("all strategies exhausted"))
}

// tryDecode asks the QR recognition primitive for exactly one payload. The
// reader is per-call: requests run concurrently and the zxing reader keeps
// internal state.
func tryDecode(img image.Image) (string, bool) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	reader := qrcode.NewQRCodeReader()
	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		return "", false
	}
	text := result.GetText()
	if text == "" {
		return "", false
	}
	return text, true
}
