// Package moderation adapts AWS Rekognition to the pipeline's classifier
// contract.
package moderation

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/lulatiAI/ai-image-backend/internal/pipeline"
)

type rekognitionAPI interface {
	DetectModerationLabels(ctx context.Context, params *rekognition.DetectModerationLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error)
}

// Rekognition classifies image bytes with DetectModerationLabels. The service
// itself filters labels below MinConfidence, so everything returned is a
// candidate for blocking.
type Rekognition struct {
	api rekognitionAPI
}

// New builds a classifier from the default AWS credential chain.
func New(ctx context.Context, region string) (*Rekognition, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("moderation: load aws config: %w", err)
	}
	return &Rekognition{api: rekognition.NewFromConfig(cfg)}, nil
}

// NewWithAPI injects a prebuilt Rekognition API, used by tests.
func NewWithAPI(api rekognitionAPI) *Rekognition {
	return &Rekognition{api: api}
}

// Detect implements pipeline.Classifier.
func (r *Rekognition) Detect(ctx context.Context, image []byte, minConfidence float32) ([]pipeline.Label, error) {
	out, err := r.api.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: image},
		MinConfidence: &minConfidence,
	})
	if err != nil {
		return nil, fmt.Errorf("moderation: detect labels: %w", err)
	}
	labels := make([]pipeline.Label, 0, len(out.ModerationLabels))
	for _, label := range out.ModerationLabels {
		name := ""
		if label.Name != nil {
			name = *label.Name
		}
		confidence := float32(0)
		if label.Confidence != nil {
			confidence = *label.Confidence
		}
		labels = append(labels, pipeline.Label{Name: name, Confidence: confidence})
	}
	return labels, nil
}

var _ pipeline.Classifier = (*Rekognition)(nil)
