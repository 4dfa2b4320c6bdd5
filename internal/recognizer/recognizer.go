// Package recognizer defines the contract between the face-match decision
// procedure and the classifiers that back it.
package recognizer

import (
	"context"
	"errors"
	"image"
)

// NormalizedSize is the edge length of the square grayscale grid every
// training and query image is resized to.
const NormalizedSize = 200

// ErrNoSamples is returned by trainers given an empty training set
var ErrNoSamples = errors.New("recognizer: no training samples")

// ErrUnavailable marks backend failures that are not about the input: a
// missing native library or an unreachable service
var ErrUnavailable = errors.New("recognizer backend unavailable")

// Sample is one labeled training exemplar. Label is the member's position
// in the registry ordering.
type Sample struct {
	Image *image.Gray
	Label int
}

// Prediction is the nearest neighbor of a query. Confidence is a distance:
// lower means a better match and it is never negative.
type Prediction struct {
	Label      int
	Confidence float64
}

// Classifier is a trained, read-only model. Implementations must be safe for
// concurrent Predict calls.
type Classifier interface {
	Predict(ctx context.Context, img *image.Gray) (Prediction, error)
}

// Closer is implemented by classifiers holding native resources. Close
// waits for in-flight Predict calls; later calls fail with ErrClosed.
type Closer interface {
	Close() error
}

// ErrClosed is returned by Predict on a released classifier
var ErrClosed = errors.New("recognizer: classifier closed")

// Trainer builds a fresh Classifier from the full sample set. Retraining is
// always a rebuild.
type Trainer interface {
	Name() string
	// DefaultThreshold is the maximum distance accepted as a match. It is
	// calibrated per feature extractor and does not transfer between them.
	DefaultThreshold() float64
	Train(ctx context.Context, samples []Sample) (Classifier, error)
}
