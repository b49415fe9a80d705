// internal/scanner/vision.go
// Google Cloud Vision annotation client.

package scanner

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

// Annotation is the label and text output of one image analysis
type Annotation struct {
	Labels []Label
	Text   string
}

// Label is a detected image label with its confidence
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// VisionClient annotates an image. Declared as an interface so the
// identification pipeline can be tested without the live API.
type VisionClient interface {
	Annotate(ctx context.Context, image []byte) (*Annotation, error)
}

type googleVisionClient struct {
	service *vision.Service
}

// NewGoogleVisionClient creates a Vision API client authenticated by API key
func NewGoogleVisionClient(ctx context.Context, apiKey string) (VisionClient, error) {
	service, err := vision.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create vision service: %w", err)
	}
	return &googleVisionClient{service: service}, nil
}

func (c *googleVisionClient) Annotate(ctx context.Context, image []byte) (*Annotation, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{
				{Type: "LABEL_DETECTION", MaxResults: 10},
				{Type: "TEXT_DETECTION"},
			},
		}},
	}

	resp, err := c.service.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return &Annotation{}, nil
	}

	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision annotate failed: %s", r.Error.Message)
	}

	annotation := &Annotation{}
	for _, l := range r.LabelAnnotations {
		annotation.Labels = append(annotation.Labels, Label{
			Description: l.Description,
			Score:       float64(l.Score),
		})
	}
	// The first text annotation aggregates all detected text.
	if len(r.TextAnnotations) > 0 {
		annotation.Text = r.TextAnnotations[0].Description
	}

	return annotation, nil
}
