package workload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// ErrMalformedImage is reported for images without pixels.
var ErrMalformedImage = errors.New("malformed image")

// An Image is a named RGBA picture.
type Image struct {
	Name string
	Pix  *image.RGBA
}

// A GrayImage is the grayscale version of an Image. Checksum is the sum
// of all gray levels.
type GrayImage struct {
	Name     string
	Width    int
	Height   int
	Checksum uint64
	Gray     *image.Gray
}

func (g GrayImage) String() string {
	return fmt.Sprintf("%s %dx%d checksum=%d", g.Name, g.Width, g.Height, g.Checksum)
}

// EqualGray reports whether two grayscale images have the same name,
// size, and checksum.
func EqualGray(a, b GrayImage) bool {
	return a.Name == b.Name && a.Width == b.Width && a.Height == b.Height && a.Checksum == b.Checksum
}

/*
Grayscale converts images to grayscale using ITU-R 601-2 luma weights
(0.299 R + 0.587 G + 0.114 B).

If OutputDir is not empty, every converted image is also written to
OutputDir as a PNG file named "grayscale_<name>". Writing files makes the
payload I/O-bound, so pools running it should use parbench.IOBound.
*/
type Grayscale struct {
	OutputDir string
}

// Process implements parbench.Workload.
func (gs Grayscale) Process(ctx context.Context, in Image) (GrayImage, error) {
	if in.Pix == nil || in.Pix.Bounds().Empty() {
		return GrayImage{}, fmt.Errorf("%s: %w", in.Name, ErrMalformedImage)
	}
	if err := ctx.Err(); err != nil {
		return GrayImage{}, err
	}
	bounds := in.Pix.Bounds()
	gray := image.NewGray(bounds)
	var checksum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := in.Pix.Pix[in.Pix.PixOffset(bounds.Min.X, y):]
		dst := gray.Pix[gray.PixOffset(bounds.Min.X, y):]
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b := uint32(src[4*x]), uint32(src[4*x+1]), uint32(src[4*x+2])
			// 16.16 fixed point, rounded
			l := uint8((r*19595 + g*38470 + b*7471 + 0x8000) >> 16)
			dst[x] = l
			checksum += uint64(l)
		}
	}
	out := GrayImage{
		Name:     in.Name,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Checksum: checksum,
		Gray:     gray,
	}
	if gs.OutputDir != "" {
		if err := writePNG(filepath.Join(gs.OutputDir, outputName(in.Name)), gray); err != nil {
			return GrayImage{}, err
		}
	}
	return out, nil
}

func outputName(name string) string {
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}
	return "grayscale_" + filepath.Base(name)
}

func writePNG(path string, img image.Image) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}
