package agent

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/droidcli/droidcli/internal/android"
)

// Screenshot is a captured and optionally downscaled screen image.
type Screenshot struct {
	PNG    []byte
	Width  int
	Height int
}

// CaptureScreenshot grabs the screen as PNG, downscaling by scale (0.1-1.0)
// to keep payloads small for vision models.
func (a *Agent) CaptureScreenshot(ctx context.Context, deviceID string, scale float64) (Screenshot, error) {
	if scale < 0.1 || scale > 1.0 {
		return Screenshot{}, fmt.Errorf("scale must be between 0.1 and 1.0, got %g", scale)
	}

	var raw []byte
	err := a.Devices.WithDevice(ctx, deviceID, func(dev android.Device) error {
		var err error
		raw, err = dev.Screenshot(ctx)
		return err
	})
	if err != nil {
		return Screenshot{}, err
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return Screenshot{}, fmt.Errorf("decode screenshot: %w", err)
	}
	bounds := img.Bounds()

	if scale == 1.0 {
		return Screenshot{PNG: raw, Width: bounds.Dx(), Height: bounds.Dy()}, nil
	}

	w := int(float64(bounds.Dx()) * scale)
	h := int(float64(bounds.Dy()) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return Screenshot{}, fmt.Errorf("encode screenshot: %w", err)
	}
	return Screenshot{PNG: buf.Bytes(), Width: w, Height: h}, nil
}
