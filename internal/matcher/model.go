// Package matcher is the face-match decision procedure: train a classifier
// from the photo folders, turn a query into a member identity or "no
// identity", and phrase the result for the player.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/saturnino-fabrica-de-software/facepk/internal/dataset"
	"github.com/saturnino-fabrica-de-software/facepk/internal/domain"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// Model is a trained classifier together with the label table it was trained
// against. The two are only ever replaced together. A Model with a nil
// classifier is the untrained state.
type Model struct {
	classifier recognizer.Classifier
	labels     *domain.LabelTable
	stats      dataset.Stats
	backend    string
	trainedAt  time.Time
	logger     *slog.Logger
}

// Match is the outcome of one prediction. Key is empty when there is no
// identity; Confidence is the raw distance, 0 when the classifier produced
// no candidate.
type Match struct {
	Key        string  `json:"key,omitempty"`
	Label      int     `json:"label"`
	Confidence float64 `json:"confidence"`
	Matched    bool    `json:"matched"`
}

var noIdentity = Match{Label: -1}

// NewModel wraps an already trained classifier
func NewModel(classifier recognizer.Classifier, labels *domain.LabelTable, backend string, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Model{
		classifier: classifier,
		labels:     labels,
		backend:    backend,
		trainedAt:  time.Now(),
		logger:     logger,
	}
}

// Train loads every reference photo under root and fits trainer on them.
// An empty dataset is not an error: the result is an untrained Model.
func Train(ctx context.Context, trainer recognizer.Trainer, registry *domain.Registry, root string, opts dataset.LoadOptions) (*Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := time.Now()
	result, err := dataset.Load(root, registry, opts)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	model := &Model{
		labels:    result.Labels,
		stats:     result.Stats,
		backend:   trainer.Name(),
		trainedAt: time.Now(),
		logger:    logger,
	}

	if len(result.Samples) == 0 {
		logger.Warn("no reference photos found, recognizer stays untrained",
			slog.String("root", root),
			slog.Int("skipped", result.Stats.Skipped),
		)
		return model, nil
	}

	classifier, err := trainer.Train(ctx, result.RecognizerSamples())
	if errors.Is(err, recognizer.ErrNoSamples) {
		logger.Warn("no usable reference photos, recognizer stays untrained",
			slog.String("backend", trainer.Name()),
			slog.Int("samples", result.Stats.Samples),
			slog.Any("error", err),
		)
		return model, nil
	}
	if err != nil {
		return nil, fmt.Errorf("train %s recognizer: %w", trainer.Name(), err)
	}
	model.classifier = classifier
	model.trainedAt = time.Now()

	logger.Info("recognizer trained",
		slog.String("backend", trainer.Name()),
		slog.Int("samples", result.Stats.Samples),
		slog.Int("skipped", result.Stats.Skipped),
		slog.Duration("duration", time.Since(start)),
	)

	return model, nil
}

// Trained reports whether the model can identify anyone
func (m *Model) Trained() bool {
	return m != nil && m.classifier != nil
}

func (m *Model) Labels() *domain.LabelTable {
	return m.labels
}

func (m *Model) Stats() dataset.Stats {
	return m.stats
}

func (m *Model) Backend() string {
	return m.backend
}

func (m *Model) TrainedAt() time.Time {
	return m.trainedAt
}

// Close releases the classifier's native resources, if it holds any
func (m *Model) Close() error {
	if m == nil {
		return nil
	}
	if c, ok := m.classifier.(recognizer.Closer); ok {
		return c.Close()
	}
	return nil
}

// PredictImage decodes an uploaded image and predicts on it. Only context
// cancellation is returned as an error; an untrained model, an undecodable
// image and a classifier failure all yield no identity.
func (m *Model) PredictImage(ctx context.Context, data []byte, threshold float64) (Match, error) {
	if !m.Trained() {
		return noIdentity, nil
	}
	img, err := dataset.DecodeBytes(data)
	if err != nil {
		m.logger.Debug("query image does not decode", slog.Any("error", err))
		return noIdentity, nil
	}
	return m.predict(ctx, img, threshold)
}

// PredictFile is PredictImage for a path on disk
func (m *Model) PredictFile(ctx context.Context, path string, threshold float64) (Match, error) {
	if !m.Trained() {
		return noIdentity, nil
	}
	img, err := dataset.DecodeFile(path)
	if err != nil {
		m.logger.Debug("query image does not decode", slog.String("path", path), slog.Any("error", err))
		return noIdentity, nil
	}
	return m.predict(ctx, img, threshold)
}

func (m *Model) predict(ctx context.Context, img *image.Gray, threshold float64) (Match, error) {
	prediction, err := m.classifier.Predict(ctx, img)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return noIdentity, ctxErr
		}
		m.logger.Warn("classifier failed on query", slog.String("backend", m.backend), slog.Any("error", err))
		return noIdentity, nil
	}
	return m.Decide(prediction, threshold), nil
}

// Decide applies the confidence ceiling. Confidence is a distance, so a
// value above threshold is rejected and a value equal to it is accepted.
func (m *Model) Decide(prediction recognizer.Prediction, threshold float64) Match {
	if prediction.Label < 0 || math.IsNaN(prediction.Confidence) || math.IsInf(prediction.Confidence, 0) {
		return noIdentity
	}

	match := Match{Label: prediction.Label, Confidence: prediction.Confidence}
	if prediction.Confidence > threshold {
		return match
	}

	key, ok := m.labels.Key(prediction.Label)
	if !ok {
		return match
	}
	match.Key = key
	match.Matched = true
	return match
}
