package moderation

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionClassifier implements Classifier on top of AWS Rekognition's
// moderation label detection.
type RekognitionClassifier struct {
	client *rekognition.Client
}

// NewRekognitionClassifier builds a classifier for the given region using
// the ambient AWS credential chain.
func NewRekognitionClassifier(ctx context.Context, region string) (*RekognitionClassifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &RekognitionClassifier{client: rekognition.NewFromConfig(cfg)}, nil
}

// DetectLabels submits the image bytes and maps the response labels.
func (r *RekognitionClassifier) DetectLabels(ctx context.Context, image []byte, minConfidence float32) ([]Label, error) {
	out, err := r.client.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &rektypes.Image{Bytes: image},
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]Label, 0, len(out.ModerationLabels))
	for _, l := range out.ModerationLabels {
		labels = append(labels, Label{
			Name:       aws.ToString(l.Name),
			Confidence: aws.ToFloat32(l.Confidence),
		})
	}
	return labels, nil
}
