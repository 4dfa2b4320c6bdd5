//go:build gocv

package opencv

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
	"github.com/saturnino-fabrica-de-software/facepk/internal/testutil"
)

func TestTrainer_RecallsTrainingExemplar(t *testing.T) {
	tr, err := NewTrainer()
	require.NoError(t, err)

	samples := []recognizer.Sample{
		{Image: testutil.Noise(1), Label: 0},
		{Image: testutil.Stripes(4), Label: 1},
	}
	clf, err := tr.Train(context.Background(), samples)
	require.NoError(t, err)

	for _, s := range samples {
		pred, err := clf.Predict(context.Background(), s.Image)
		require.NoError(t, err)
		assert.Equal(t, s.Label, pred.Label)
		assert.LessOrEqual(t, pred.Confidence, DefaultThreshold)
	}
}

func TestGrayBytes_PacksRows(t *testing.T) {
	img := testutil.Noise(2)
	sub := img.SubImage(img.Rect.Inset(10)).(*image.Gray)

	packed := grayBytes(sub)
	require.Len(t, packed, 180*180)
	assert.Equal(t, sub.GrayAt(10, 10).Y, packed[0])
}

func TestClassifier_Close(t *testing.T) {
	tr, err := NewTrainer()
	require.NoError(t, err)
	clf, err := tr.Train(context.Background(), []recognizer.Sample{{Image: testutil.Noise(1), Label: 0}})
	require.NoError(t, err)

	closer := clf.(*Classifier)
	require.NoError(t, closer.Close())
	require.NoError(t, closer.Close())

	_, err = clf.Predict(context.Background(), testutil.Noise(1))
	assert.ErrorIs(t, err, recognizer.ErrClosed)
}
