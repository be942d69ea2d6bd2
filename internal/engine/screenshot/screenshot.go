// Package screenshot saves rendered frames as PNG files.
package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ErrPixelSize is returned when a pixel buffer does not match its dimensions.
var ErrPixelSize = errors.New("pixel data size mismatch")

// Capture writes screenshots into a directory.
type Capture struct {
	dir    string
	prefix string
	log    *zap.Logger

	now func() time.Time
}

// New creates a capture that writes <prefix>-<timestamp>.png files into dir.
func New(dir, prefix string, log *zap.Logger) *Capture {
	if log == nil {
		log = zap.NewNop()
	}
	return &Capture{dir: dir, prefix: prefix, log: log, now: time.Now}
}

// Filename returns the path the next screenshot would be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s-%s.png", c.prefix, c.now().Format("20060102-150405.000"))
	if c.dir == "" {
		return name
	}
	return filepath.Join(c.dir, name)
}

// Save encodes bottom-up RGBA pixels, as read back from GL, and returns the file path.
func (c *Capture) Save(pixels []byte, width, height int) (string, error) {
	img, err := FlipRGBA(pixels, width, height)
	if err != nil {
		return "", err
	}

	if c.dir != "" {
		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return "", fmt.Errorf("creating screenshot dir: %w", err)
		}
	}

	path := c.Filename()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	c.log.Info("screenshot saved",
		zap.String("path", path),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return path, nil
}

// FlipRGBA copies bottom-up rows into a top-down image.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrPixelSize, width, height)
	}
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrPixelSize, width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}
