// Package lbph is a pure-Go local binary pattern histogram recognizer. Its
// defaults and distance follow OpenCV's LBPHFaceRecognizer, so thresholds
// calibrated there keep their meaning.
package lbph

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// DefaultThreshold is the distance ceiling calibrated for radius 1, 8
// neighbors, an 8x8 grid and 200x200 inputs.
const DefaultThreshold = 80.0

// float32 epsilon, the tolerance OpenCV uses for "neighbor equals center"
const epsilon = 1.1920929e-07

// Config holds the LBP operator and grid parameters
type Config struct {
	Radius    int
	Neighbors int
	GridX     int
	GridY     int
}

// DefaultConfig returns OpenCV's defaults
func DefaultConfig() Config {
	return Config{
		Radius:    1,
		Neighbors: 8,
		GridX:     8,
		GridY:     8,
	}
}

func (c Config) validate() error {
	if c.Radius < 1 {
		return fmt.Errorf("lbph: radius must be >= 1, got %d", c.Radius)
	}
	if c.Neighbors < 1 || c.Neighbors > 16 {
		return fmt.Errorf("lbph: neighbors must be in [1,16], got %d", c.Neighbors)
	}
	if c.GridX < 1 || c.GridY < 1 {
		return fmt.Errorf("lbph: grid must be positive, got %dx%d", c.GridX, c.GridY)
	}
	return nil
}

// Trainer implements recognizer.Trainer
type Trainer struct {
	config Config
}

func NewTrainer(config Config) (*Trainer, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &Trainer{config: config}, nil
}

func (t *Trainer) Name() string {
	return "lbph"
}

func (t *Trainer) DefaultThreshold() float64 {
	return DefaultThreshold
}

// Train computes one spatial histogram per sample
func (t *Trainer) Train(ctx context.Context, samples []recognizer.Sample) (recognizer.Classifier, error) {
	if len(samples) == 0 {
		return nil, recognizer.ErrNoSamples
	}

	model := &Model{
		config:     t.config,
		histograms: make([][]float64, len(samples)),
		labels:     make([]int, len(samples)),
	}

	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hist, err := t.config.histogram(s.Image)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		model.histograms[i] = hist
		model.labels[i] = s.Label
	}

	return model, nil
}

// Model is a trained LBPH classifier. It is immutable after Train.
type Model struct {
	config     Config
	histograms [][]float64
	labels     []int
}

// Predict returns the label of the nearest training histogram and its
// chi-square distance. Ties keep the earliest sample.
func (m *Model) Predict(ctx context.Context, img *image.Gray) (recognizer.Prediction, error) {
	query, err := m.config.histogram(img)
	if err != nil {
		return recognizer.Prediction{}, err
	}

	best := recognizer.Prediction{Label: -1, Confidence: math.MaxFloat64}
	for i, hist := range m.histograms {
		d := ChiSquare(hist, query)
		if d < best.Confidence {
			best = recognizer.Prediction{Label: m.labels[i], Confidence: d}
		}
	}

	return best, nil
}

// Size is the number of stored training histograms
func (m *Model) Size() int {
	return len(m.histograms)
}

// ChiSquare is the alternative chi-square distance, sum of 2(a-b)^2/(a+b)
func ChiSquare(a, b []float64) float64 {
	var result float64
	for i := range a {
		diff := a[i] - b[i]
		sum := a[i] + b[i]
		if math.Abs(sum) > math.SmallestNonzeroFloat64 {
			result += diff * diff / sum
		}
	}
	return 2 * result
}

func (c Config) histogram(img *image.Gray) ([]float64, error) {
	b := img.Bounds()
	if b.Dx() <= 2*c.Radius || b.Dy() <= 2*c.Radius {
		return nil, fmt.Errorf("lbph: image %dx%d too small for radius %d", b.Dx(), b.Dy(), c.Radius)
	}
	codes, w, h := c.lbp(img)
	return c.spatialHistogram(codes, w, h), nil
}

// lbp computes the extended (circular, bilinearly interpolated) local binary
// pattern of img. The result is (width-2r) x (height-2r), row-major.
func (c Config) lbp(img *image.Gray) ([]int, int, int) {
	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	r := c.Radius
	w, h := cols-2*r, rows-2*r
	codes := make([]int, w*h)

	at := func(y, x int) float64 {
		return float64(img.Pix[y*img.Stride+x])
	}

	for n := 0; n < c.Neighbors; n++ {
		angle := 2.0 * math.Pi * float64(n) / float64(c.Neighbors)
		x := float64(r) * math.Cos(angle)
		y := -float64(r) * math.Sin(angle)

		fx, fy := int(math.Floor(x)), int(math.Floor(y))
		cx, cy := int(math.Ceil(x)), int(math.Ceil(y))

		ty := y - float64(fy)
		tx := x - float64(fx)

		w1 := (1 - tx) * (1 - ty)
		w2 := tx * (1 - ty)
		w3 := (1 - tx) * ty
		w4 := tx * ty

		for i := r; i < rows-r; i++ {
			for j := r; j < cols-r; j++ {
				t := w1*at(i+fy, j+fx) + w2*at(i+fy, j+cx) + w3*at(i+cy, j+fx) + w4*at(i+cy, j+cx)
				center := at(i, j)
				if t > center || math.Abs(t-center) < epsilon {
					codes[(i-r)*w+(j-r)] += 1 << n
				}
			}
		}
	}

	return codes, w, h
}

// spatialHistogram concatenates one normalized histogram per grid cell.
// Pixels beyond the last full cell are ignored.
func (c Config) spatialHistogram(codes []int, w, h int) []float64 {
	bins := 1 << c.Neighbors
	cellW, cellH := w/c.GridX, h/c.GridY
	out := make([]float64, c.GridX*c.GridY*bins)
	if cellW == 0 || cellH == 0 {
		return out
	}
	total := float64(cellW * cellH)

	cell := 0
	for gy := 0; gy < c.GridY; gy++ {
		for gx := 0; gx < c.GridX; gx++ {
			hist := out[cell*bins : (cell+1)*bins]
			for y := gy * cellH; y < (gy+1)*cellH; y++ {
				row := codes[y*w:]
				for x := gx * cellW; x < (gx+1)*cellW; x++ {
					hist[row[x]]++
				}
			}
			for i := range hist {
				hist[i] /= total
			}
			cell++
		}
	}

	return out
}

var _ recognizer.Trainer = (*Trainer)(nil)
var _ recognizer.Classifier = (*Model)(nil)
