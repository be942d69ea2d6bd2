package screenshot

import (
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFlipRGBA(t *testing.T) {
	// 1x2: bottom row red, top row blue
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRGBA(pixels, 1, 2)
	if err != nil {
		t.Fatalf("FlipRGBA() error = %v", err)
	}

	if got, want := img.RGBAAt(0, 0), (color.RGBA{0, 0, 255, 255}); got != want {
		t.Errorf("top pixel = %v, want %v", got, want)
	}
	if got, want := img.RGBAAt(0, 1), (color.RGBA{255, 0, 0, 255}); got != want {
		t.Errorf("bottom pixel = %v, want %v", got, want)
	}
}

func TestFlipRGBAErrors(t *testing.T) {
	tests := []struct {
		name   string
		pixels []byte
		w, h   int
	}{
		{"short buffer", make([]byte, 7), 1, 2},
		{"zero width", nil, 0, 2},
		{"negative height", nil, 2, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FlipRGBA(tt.pixels, tt.w, tt.h)
			if !errors.Is(err, ErrPixelSize) {
				t.Errorf("FlipRGBA() error = %v, want %v", err, ErrPixelSize)
			}
		})
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	c := New(dir, "cloth", nil)
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	pixels := make([]byte, 2*2*4)
	for i := range pixels {
		pixels[i] = 200
	}

	path, err := c.Save(pixels, 2, 2)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if want := filepath.Join(dir, "cloth-20240501-123000.000.png"); path != want {
		t.Errorf("Save() path = %q, want %q", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening screenshot: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Errorf("bounds = %v, want 2x2", b)
	}
}

func TestFilenameWithoutDir(t *testing.T) {
	c := New("", "shot", nil)
	name := c.Filename()
	if strings.ContainsRune(name, filepath.Separator) {
		t.Errorf("Filename() = %q, want bare name", name)
	}
	if !strings.HasPrefix(name, "shot-") || !strings.HasSuffix(name, ".png") {
		t.Errorf("Filename() = %q, want shot-*.png", name)
	}
}
