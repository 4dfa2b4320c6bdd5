package opencv

import (
	"fmt"

	"github.com/saturnino-fabrica-de-software/facepk/internal/recognizer"
)

// ErrUnavailable is returned when the binary was built without the gocv tag
var ErrUnavailable = fmt.Errorf("%w: opencv built without gocv (rebuild with -tags gocv)", recognizer.ErrUnavailable)
