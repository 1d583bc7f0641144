package cutout

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://www.cutout.pro/api/v1"

// ErrNoFace is returned when the provider answers 2xx but produced no cutout.
var ErrNoFace = errors.New("face cutout failed")

// UpstreamError carries the provider's HTTP status so handlers can relay it.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("cutout API returned %d: %s", e.Status, http.StatusText(e.Status))
}

// Result is the processed cutout for one photo: the image as base64 plus the
// provider's face landmark analysis, relayed verbatim.
type Result struct {
	ImageBase64  string
	FaceAnalysis json.RawMessage
}

// ImageBytes decodes the processed image for re-upload.
func (r *Result) ImageBytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cutout image: %w", err)
	}
	return data, nil
}

// Client talks to the face-cutout provider.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// NewClientWithBaseURL points the client at a different endpoint, for tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type mattingResponse struct {
	Data struct {
		ImageBase64  string          `json:"imageBase64"`
		FaceAnalysis json.RawMessage `json:"faceAnalysis"`
	} `json:"data"`
}

// MattingByURL runs the face cutout over an already uploaded image. The
// provider fetches the image itself from the public URL.
func (c *Client) MattingByURL(ctx context.Context, imageURL string) (*Result, error) {
	endpoint := fmt.Sprintf(
		"%s/mattingByUrl?url=%s&mattingType=3&crop=true&preview=true&faceAnalysis=true",
		c.baseURL, url.QueryEscape(imageURL),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build cutout request: %w", err)
	}
	req.Header.Set("APIKEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cutout request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read cutout response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf("cutout API response not ok: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	parsed := mattingResponse{}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode cutout response: %w", err)
	}

	if parsed.Data.ImageBase64 == "" {
		return nil, ErrNoFace
	}

	return &Result{
		ImageBase64:  parsed.Data.ImageBase64,
		FaceAnalysis: parsed.Data.FaceAnalysis,
	}, nil
}
