package face

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/facepk/internal/config"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/deepface"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/lbph"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/opencv"
)

// RecognizerType defines supported recognizer backends
type RecognizerType string

const (
	// RecognizerTypeLBPH is the pure-Go LBPH recognizer (default)
	RecognizerTypeLBPH RecognizerType = "lbph"
	// RecognizerTypeOpenCV is OpenCV's LBPH through gocv; needs the gocv build tag
	RecognizerTypeOpenCV RecognizerType = "opencv"
	// RecognizerTypeDeepFace delegates embeddings to a DeepFace service
	RecognizerTypeDeepFace RecognizerType = "deepface"
)

// NewTrainer creates a recognizer.Trainer based on configuration
//
// Environment variables:
//   - RECOGNIZER: "lbph", "opencv" or "deepface" (default: "lbph")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5005")
//   - DEEPFACE_MODEL: DeepFace model name (default: "Facenet512")
func NewTrainer(cfg *config.Config) (recognizer.Trainer, error) {
	switch RecognizerType(cfg.Recognizer) {
	case RecognizerTypeLBPH, "":
		return lbph.NewTrainer(lbph.DefaultConfig())

	case RecognizerTypeOpenCV:
		tr, err := opencv.NewTrainer()
		if err != nil {
			return nil, fmt.Errorf("create opencv recognizer: %w", err)
		}
		return tr, nil

	case RecognizerTypeDeepFace:
		return createDeepFaceTrainer(cfg), nil

	default:
		return nil, fmt.Errorf("unknown recognizer type: %s (supported: %s, %s, %s)",
			cfg.Recognizer, RecognizerTypeLBPH, RecognizerTypeOpenCV, RecognizerTypeDeepFace)
	}
}

func createDeepFaceTrainer(cfg *config.Config) *deepface.Trainer {
	dfConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		dfConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		dfConfig.Model = cfg.DeepFaceModel
	}
	return deepface.NewTrainer(dfConfig)
}
