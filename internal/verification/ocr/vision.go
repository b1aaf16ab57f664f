package ocr

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"

	"farmgate/internal/verification/providers"
)

const providerVision = "google-vision"

// VisionDetector runs DOCUMENT_TEXT_DETECTION through the Cloud Vision API.
type VisionDetector struct {
	svc *vision.Service
}

// NewVision builds a Vision client. An empty credentialsFile falls back to
// application default credentials.
func NewVision(ctx context.Context, credentialsFile string) (*VisionDetector, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	svc, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init vision client: %w", err)
	}
	return &VisionDetector{svc: svc}, nil
}

func (v *VisionDetector) DetectText(ctx context.Context, image []byte) (string, error) {
	req := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{
				Type:       "DOCUMENT_TEXT_DETECTION",
				MaxResults: 1,
			}},
		}},
	}

	resp, err := v.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return "", providers.ClassifyStatus(providerVision, gerr.Code, gerr.Message)
		}
		return "", providers.ClassifyTransport(providerVision, err)
	}
	if len(resp.Responses) == 0 {
		return "", nil
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return "", providers.NewProviderError(providers.ErrorBadData, providerVision, r.Error.Message, nil)
	}
	if r.FullTextAnnotation != nil {
		return r.FullTextAnnotation.Text, nil
	}
	if len(r.TextAnnotations) > 0 {
		return r.TextAnnotations[0].Description, nil
	}
	return "", nil
}
