//go:build gocv

// Package opencv backs the recognizer with OpenCV's contrib
// LBPHFaceRecognizer through gocv. Build with -tags gocv and an OpenCV
// installation that includes the face module.
package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// DefaultThreshold matches the pure-Go LBPH ceiling; both use OpenCV defaults
const DefaultThreshold = 80.0

// Available reports whether the binary was built with gocv
const Available = true

type Trainer struct{}

func NewTrainer() (*Trainer, error) {
	return &Trainer{}, nil
}

func (t *Trainer) Name() string {
	return "opencv"
}

func (t *Trainer) DefaultThreshold() float64 {
	return DefaultThreshold
}

func (t *Trainer) Train(ctx context.Context, samples []recognizer.Sample) (recognizer.Classifier, error) {
	if len(samples) == 0 {
		return nil, recognizer.ErrNoSamples
	}

	mats := make([]gocv.Mat, 0, len(samples))
	labels := make([]int, 0, len(samples))
	defer func() {
		for _, m := range mats {
			_ = m.Close()
		}
	}()

	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := toMat(s.Image)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		mats = append(mats, m)
		labels = append(labels, s.Label)
	}

	fr := contrib.NewLBPHFaceRecognizer()
	fr.Train(mats, labels)

	return &Classifier{fr: fr}, nil
}

// Classifier wraps a trained OpenCV recognizer. OpenCV's predict is const,
// so concurrent calls are safe; mu only orders them against Close.
type Classifier struct {
	mu sync.RWMutex
	fr *contrib.LBPHFaceRecognizer
}

func (c *Classifier) Predict(ctx context.Context, img *image.Gray) (recognizer.Prediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fr == nil {
		return recognizer.Prediction{}, recognizer.ErrClosed
	}

	m, err := toMat(img)
	if err != nil {
		return recognizer.Prediction{}, err
	}
	defer func() {
		_ = m.Close()
	}()

	resp := c.fr.PredictExtendedResponse(m)
	return recognizer.Prediction{
		Label:      int(resp.Label),
		Confidence: float64(resp.Confidence),
	}, nil
}

// Close frees the native recognizer once in-flight predictions finish
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fr == nil {
		return nil
	}
	err := release(c.fr)
	c.fr = nil
	return err
}

// release calls the recognizer's Close; older gocv releases do not have one
// and leak the native model instead.
func release(fr any) error {
	switch closer := fr.(type) {
	case interface{ Close() error }:
		return closer.Close()
	case interface{ Close() }:
		closer.Close()
	}
	return nil
}

func toMat(img *image.Gray) (gocv.Mat, error) {
	b := img.Bounds()
	m, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8U, grayBytes(img))
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("opencv: convert image: %w", err)
	}
	return m, nil
}

// grayBytes returns tightly packed rows
func grayBytes(img *image.Gray) []byte {
	b := img.Bounds()
	if img.Stride == b.Dx() {
		return img.Pix[:b.Dx()*b.Dy()]
	}
	out := make([]byte, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		out = append(out, img.Pix[y*img.Stride:y*img.Stride+b.Dx()]...)
	}
	return out
}

var _ recognizer.Trainer = (*Trainer)(nil)
var _ recognizer.Closer = (*Classifier)(nil)
