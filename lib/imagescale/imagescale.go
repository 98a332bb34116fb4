// Package imagescale shrinks uploaded photos so they fit on the vision board:
// at most MaxDimension pixels on either side, aspect ratio kept, re-encoded as
// a JPEG data URI.
package imagescale

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"math"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/webp"
)

const (
	MaxDimension = 600
	Quality      = 80
	// MaxPixels bounds the decoded canvas, whatever the upload's file size.
	MaxPixels = 50_000_000
)

var ErrDecode = errors.New("could not decode image")

type Result struct {
	DataURI string
	Width   int
	Height  int
}

// TargetSize never upscales.
func TargetSize(width, height int) (int, int) {
	longest := max(width, height)
	if longest <= MaxDimension {
		return width, height
	}
	factor := float64(MaxDimension) / float64(longest)
	w := int(math.Round(float64(width) * factor))
	h := int(math.Round(float64(height) * factor))
	return max(w, 1), max(h, 1)
}

// Downscale reads r to the end and works on its own copy of the bytes.
func Downscale(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, errors.Wrap(err, "reading image")
	}
	if len(data) == 0 {
		return Result{}, errors.Wrap(ErrDecode, "empty upload")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Result{}, errors.Wrapf(ErrDecode, "upload is %s", mtype.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Result{}, errors.Wrapf(ErrDecode, "reading %s header: %v", mtype.String(), err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Result{}, errors.Wrapf(ErrDecode, "%dx%d image is over the %d pixel limit", cfg.Width, cfg.Height, MaxPixels)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, errors.Wrapf(ErrDecode, "decoding %s: %v", mtype.String(), err)
	}

	b := src.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy())
	if w == 0 || h == 0 {
		return Result{}, errors.Wrapf(ErrDecode, "%s image has no pixels", format)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	// JPEG has no alpha, so transparent pixels land on white
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: Quality}); err != nil {
		return Result{}, errors.Wrap(err, "encoding jpeg")
	}

	return Result{
		DataURI: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(out.Bytes()),
		Width:   w,
		Height:  h,
	}, nil
}

type Outcome struct {
	Result Result
	Err    error
}

// DownscaleAsync runs Downscale in its own goroutine and delivers exactly one
// Outcome. The channel is buffered, so a caller that stops listening does not
// leak the goroutine. Concurrent calls share nothing.
func DownscaleAsync(r io.Reader) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		res, err := Downscale(r)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}
