package deepface

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

var (
	ErrDeepFaceUnavailable = fmt.Errorf("%w: deepface service unavailable", recognizer.ErrUnavailable)
	ErrInvalidResponse     = errors.New("invalid response from deepface")
	ErrNoFaceInResponse    = errors.New("no face data in deepface response")
	ErrNoEmbeddings        = fmt.Errorf("%w: deepface found no face in any training sample", recognizer.ErrNoSamples)
)
