// Package testutil builds deterministic synthetic face stand-ins for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Size matches the recognizer grid so fixtures survive normalization unchanged
const Size = 200

// Noise is a seeded random texture; different seeds share statistics but not pixels
func Noise(seed int64) *image.Gray {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// Flat is a single gray level
func Flat(level uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	return img
}

// Stripes alternates black and white horizontal bands of the given height
func Stripes(band int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, Size, Size))
	for y := 0; y < Size; y++ {
		v := uint8(0)
		if (y/band)%2 == 1 {
			v = 255
		}
		for x := 0; x < Size; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

// PNG encodes img
func PNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// WritePNG writes img under dir/name, creating dir
func WritePNG(t testing.TB, dir, name string, img image.Image) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, PNG(t, img), 0o644))
	return path
}
