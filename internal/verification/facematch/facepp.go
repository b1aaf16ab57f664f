package facematch

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"farmgate/internal/verification/providers"
)

const (
	providerFacePP = "facepp"

	DefaultFacePPBaseURL = "https://api-us.faceplusplus.com"
	comparePath          = "/facepp/v3/compare"
)

// image-level rejections; everything else non-2xx is a vendor fault
var imageRejections = []string{
	"NO_FACE_FOUND",
	"IMAGE_ERROR_UNSUPPORTED_FORMAT",
	"INVALID_IMAGE_SIZE",
	"IMAGE_FILE_TOO_LARGE",
	"IMAGE_DOWNLOAD_TIMEOUT",
	"BAD_FACE",
}

// FacePPClient calls the Face++ compare endpoint with an API key pair.
type FacePPClient struct {
	baseURL    *url.URL
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

// NewFacePPClient parses baseURL, defaulting to the public US endpoint.
func NewFacePPClient(baseURL, apiKey, apiSecret string) (*FacePPClient, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("face++ api key and secret are required")
	}
	if baseURL == "" {
		baseURL = DefaultFacePPBaseURL
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid face++ base URL: %w", err)
	}
	return &FacePPClient{
		baseURL:   parsed,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		// per-call deadline comes from ctx; this is a backstop
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type compareResponse struct {
	Confidence   *float64          `json:"confidence"`
	ErrorMessage string            `json:"error_message"`
	RequestID    string            `json:"request_id"`
	Faces1       []json.RawMessage `json:"faces1"`
	Faces2       []json.RawMessage `json:"faces2"`
}

// Compare sends both images and returns Face++'s confidence. A non-empty
// vendorMessage means the vendor answered but could not compare the images.
func (c *FacePPClient) Compare(ctx context.Context, idImage, selfie []byte) (float64, string, error) {
	form := url.Values{}
	form.Set("api_key", c.apiKey)
	form.Set("api_secret", c.apiSecret)
	form.Set("image_base64_1", base64.StdEncoding.EncodeToString(idImage))
	form.Set("image_base64_2", base64.StdEncoding.EncodeToString(selfie))

	u := c.baseURL.JoinPath(comparePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return 0, "", providers.NewProviderError(providers.ErrorInternal, providerFacePP, "build request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", providers.ClassifyTransport(providerFacePP, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, "", providers.ClassifyTransport(providerFacePP, err)
	}

	var out compareResponse
	if err := json.Unmarshal(body, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return 0, "", providers.ClassifyStatus(providerFacePP, resp.StatusCode, "")
		}
		return 0, "", providers.NewProviderError(providers.ErrorContractMismatch, providerFacePP, "decode compare response", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isImageRejection(out.ErrorMessage) {
			return 0, describeRejection(out.ErrorMessage), nil
		}
		if strings.HasPrefix(out.ErrorMessage, "CONCURRENCY_LIMIT_EXCEEDED") {
			return 0, "", providers.NewProviderError(providers.ErrorRateLimited, providerFacePP, out.ErrorMessage, nil)
		}
		return 0, "", providers.ClassifyStatus(providerFacePP, resp.StatusCode, out.ErrorMessage)
	}

	if out.Confidence == nil {
		return 0, "No face detected in one of the images. Please retake the photos with your face clearly visible.", nil
	}
	return *out.Confidence, "", nil
}

func isImageRejection(msg string) bool {
	for _, prefix := range imageRejections {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

func describeRejection(msg string) string {
	switch {
	case strings.HasPrefix(msg, "NO_FACE_FOUND"), strings.HasPrefix(msg, "BAD_FACE"):
		return "No face detected in one of the images. Please retake the photos with your face clearly visible."
	case strings.HasPrefix(msg, "IMAGE_FILE_TOO_LARGE"), strings.HasPrefix(msg, "INVALID_IMAGE_SIZE"):
		return "One of the images is too large or too small. Please upload a clearer photo."
	default:
		return "One of the images could not be processed. Please upload a JPEG or PNG photo."
	}
}
