//go:build !gocv

package opencv

import (
	"context"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// DefaultThreshold matches the pure-Go LBPH ceiling; both use OpenCV defaults
const DefaultThreshold = 80.0

// Available reports whether the binary was built with gocv
const Available = false

// NewTrainer always fails without the gocv build tag
func NewTrainer() (*Trainer, error) {
	return nil, ErrUnavailable
}

// Trainer is a placeholder so callers compile without gocv
type Trainer struct{}

func (t *Trainer) Name() string {
	return "opencv"
}

func (t *Trainer) DefaultThreshold() float64 {
	return DefaultThreshold
}

func (t *Trainer) Train(ctx context.Context, samples []recognizer.Sample) (recognizer.Classifier, error) {
	return nil, ErrUnavailable
}

var _ recognizer.Trainer = (*Trainer)(nil)
