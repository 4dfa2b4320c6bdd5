// Package deepface is a recognizer backed by a remote DeepFace service. Each
// photo becomes an embedding; prediction is nearest neighbor by cosine
// distance.
package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// DefaultThreshold is the cosine distance ceiling DeepFace documents for Facenet512
const DefaultThreshold = 0.4

// Trainer implements recognizer.Trainer
type Trainer struct {
	client *Client
}

func NewTrainer(config Config) *Trainer {
	return &Trainer{client: NewClient(config)}
}

func (t *Trainer) Name() string {
	return "deepface"
}

func (t *Trainer) DefaultThreshold() float64 {
	return DefaultThreshold
}

// Train embeds every sample. Samples DeepFace finds no face in are dropped;
// if none survive the result is ErrNoEmbeddings.
func (t *Trainer) Train(ctx context.Context, samples []recognizer.Sample) (recognizer.Classifier, error) {
	if len(samples) == 0 {
		return nil, recognizer.ErrNoSamples
	}

	classifier := &Classifier{client: t.client}
	for i, s := range samples {
		embedding, err := t.embed(ctx, s.Image)
		if errors.Is(err, ErrNoFaceInResponse) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		classifier.embeddings = append(classifier.embeddings, embedding)
		classifier.labels = append(classifier.labels, s.Label)
	}

	if len(classifier.embeddings) == 0 {
		return nil, ErrNoEmbeddings
	}
	return classifier, nil
}

// embed returns the embedding of the largest face in img
func (t *Trainer) embed(ctx context.Context, img *image.Gray) ([]float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	resp, err := t.client.Represent(ctx, base64.StdEncoding.EncodeToString(buf.Bytes()))
	if isClientError(err) {
		// DeepFace answers 400 when enforce_detection finds no face
		return nil, fmt.Errorf("%w: %v", ErrNoFaceInResponse, err)
	}
	if err != nil {
		return nil, err
	}

	best, bestArea := -1, -1
	for i, r := range resp.Results {
		if len(r.Embedding) == 0 {
			continue
		}
		if area := r.FacialArea.W * r.FacialArea.H; area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil, ErrNoFaceInResponse
	}
	return resp.Results[best].Embedding, nil
}

// Classifier holds the training embeddings. It is immutable after Train.
type Classifier struct {
	client     *Client
	embeddings [][]float64
	labels     []int
}

// Predict returns the nearest training label by cosine distance. A query
// with no detectable face yields label -1 and an infinite distance.
func (c *Classifier) Predict(ctx context.Context, img *image.Gray) (recognizer.Prediction, error) {
	query, err := (&Trainer{client: c.client}).embed(ctx, img)
	if errors.Is(err, ErrNoFaceInResponse) {
		return recognizer.Prediction{Label: -1, Confidence: math.Inf(1)}, nil
	}
	if err != nil {
		return recognizer.Prediction{}, err
	}

	best := recognizer.Prediction{Label: -1, Confidence: math.Inf(1)}
	for i, emb := range c.embeddings {
		d := CosineDistance(emb, query)
		if d < best.Confidence {
			best = recognizer.Prediction{Label: c.labels[i], Confidence: d}
		}
	}
	return best, nil
}

// Size is the number of stored embeddings
func (c *Classifier) Size() int {
	return len(c.embeddings)
}

var _ recognizer.Trainer = (*Trainer)(nil)
var _ recognizer.Classifier = (*Classifier)(nil)
