package vision

import "context"

// Detector port (interface for the object-detection collaborator)
type Detector interface {
	// Detect runs inference on the raw image and returns boxes at or above
	// the confidence threshold.
	Detect(ctx context.Context, image []byte, confThreshold float64) ([]RawDetection, error)

	// Ready reports whether the model is loaded and reachable. Checked by
	// the coordinator before the detect stage.
	Ready(ctx context.Context) error
}
