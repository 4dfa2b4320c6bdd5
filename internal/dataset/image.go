package dataset

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// Normalize converts to grayscale and resizes to the fixed recognizer grid,
// in that order.
func Normalize(src image.Image) *image.Gray {
	b := src.Bounds()
	gray, ok := src.(*image.Gray)
	if !ok {
		gray = image.NewGray(b)
		draw.Draw(gray, b, src, b.Min, draw.Src)
	}

	size := recognizer.NormalizedSize
	dst := image.NewGray(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), gray, b, draw.Src, nil)
	return dst
}

// DecodeBytes decodes a jpeg, png or bmp image and normalizes it
func DecodeBytes(data []byte) (*image.Gray, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode image: empty bounds %v", b)
	}
	return Normalize(img), nil
}

// DecodeFile reads and normalizes the image at path
func DecodeFile(path string) (*image.Gray, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	img, err := DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
