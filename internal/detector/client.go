// Package detector calls the external face detection service. The service
// is a black box that maps an image to zero or more fixed-length
// descriptors; this client only validates dimensions and shuttles bytes.
package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"faceattend/internal/facedesc"
)

// Region is a detected face bounding box, used for on-screen annotation
// only, never for matching.
type Region struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Detection is the service's answer for one image. Descriptors may be
// empty when no face was found; Regions lines up with Descriptors by index.
type Detection struct {
	Descriptors []facedesc.Descriptor
	Regions     []Region
}

// Client calls the face detection microservice.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. With skip set, calls return a canned single-face
// detection so the pipeline can run without the service (dev mode).
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 30 * time.Second, // descriptor extraction can take a while
		},
	}
}

// Detect uploads image bytes and returns the detected descriptors.
func (c *Client) Detect(ctx context.Context, image []byte, filename string) (*Detection, error) {
	if c.Skip {
		return mockDetection(), nil
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("image payload required")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, bytes.NewReader(image)); err != nil {
		return nil, err
	}
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/descriptors", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.do(req)
}

// DetectURL asks the service to fetch and process an already-uploaded
// image. Used by the capture worker.
func (c *Client) DetectURL(ctx context.Context, imageURL string) (*Detection, error) {
	if c.Skip {
		return mockDetection(), nil
	}
	if imageURL == "" {
		return nil, fmt.Errorf("image url required")
	}

	body, _ := json.Marshal(map[string]string{"image_url": imageURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/descriptors", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// Health checks if the detection service is available.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) do(req *http.Request) (*Detection, error) {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("face service error %s: %s", resp.Status, string(bodyBytes))
	}

	var out struct {
		Descriptors [][]float64 `json:"descriptors"`
		Regions     []Region    `json:"regions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	det := &Detection{
		Descriptors: make([]facedesc.Descriptor, 0, len(out.Descriptors)),
		Regions:     out.Regions,
	}
	for i, vec := range out.Descriptors {
		if len(vec) != facedesc.Dim {
			return nil, fmt.Errorf("descriptor %d has dimension %d, want %d", i, len(vec), facedesc.Dim)
		}
		det.Descriptors = append(det.Descriptors, facedesc.Descriptor(vec))
	}
	return det, nil
}

func mockDetection() *Detection {
	d := make(facedesc.Descriptor, facedesc.Dim)
	d[0] = 0.1
	return &Detection{
		Descriptors: []facedesc.Descriptor{d},
		Regions:     []Region{{Top: 10, Right: 110, Bottom: 110, Left: 10}},
	}
}
