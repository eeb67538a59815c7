package moderation

import "context"

// Label is one moderation finding returned by the classifier.
type Label struct {
	Name       string  `json:"name"`
	Confidence float32 `json:"confidence"`
}

// Classifier is the external content-labelling capability. It receives raw
// image bytes and a minimum confidence threshold and returns the labels at
// or above it. An empty result means the image is safe.
type Classifier interface {
	DetectLabels(ctx context.Context, image []byte, minConfidence float32) ([]Label, error)
}
