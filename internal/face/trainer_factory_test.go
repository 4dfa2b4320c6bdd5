package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facepk/internal/config"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/deepface"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/lbph"
	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer/opencv"
)

func TestNewTrainer(t *testing.T) {
	tests := []struct {
		name          string
		recognizer    string
		wantName      string
		wantThreshold float64
	}{
		{"empty defaults to lbph", "", "lbph", 80.0},
		{"explicit lbph", "lbph", "lbph", 80.0},
		{"deepface", "deepface", "deepface", 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTrainer(&config.Config{Recognizer: tt.recognizer})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, tr.Name())
			assert.Equal(t, tt.wantThreshold, tr.DefaultThreshold())
		})
	}
}

func TestNewTrainer_Types(t *testing.T) {
	tr, err := NewTrainer(&config.Config{Recognizer: "lbph"})
	require.NoError(t, err)
	assert.IsType(t, &lbph.Trainer{}, tr)

	tr, err = NewTrainer(&config.Config{Recognizer: "deepface", DeepFaceURL: "http://custom-host:8080"})
	require.NoError(t, err)
	assert.IsType(t, &deepface.Trainer{}, tr)
}

func TestNewTrainer_OpenCV(t *testing.T) {
	tr, err := NewTrainer(&config.Config{Recognizer: "opencv"})
	if !opencv.Available {
		assert.ErrorIs(t, err, opencv.ErrUnavailable)
		assert.Nil(t, tr)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, "opencv", tr.Name())
}

func TestNewTrainer_Unknown(t *testing.T) {
	_, err := NewTrainer(&config.Config{Recognizer: "eigenfaces"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown recognizer type: eigenfaces")
	assert.Contains(t, err.Error(), "lbph")
}
