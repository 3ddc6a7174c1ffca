package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sezaiemrekonuk/freesight-ai/internal/domain/vision"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

// Client calls the YOLO inference sidecar over HTTP.
//
// The model handle is warmed up once at startup; Ready re-probes only while
// the sidecar has not yet been seen healthy, with a single prober at a time
// so concurrent first users wait instead of racing.
type Client struct {
	endpoint string
	http     *http.Client

	ready   atomic.Bool
	probeMu sync.Mutex
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// WarmUp probes the sidecar once. Called eagerly at process startup.
func (c *Client) WarmUp(ctx context.Context) error {
	return c.probe(ctx)
}

// Ready implements the vision.Detector health signal.
func (c *Client) Ready(ctx context.Context) error {
	if c.ready.Load() {
		return nil
	}
	c.probeMu.Lock()
	defer c.probeMu.Unlock()
	if c.ready.Load() {
		return nil
	}
	return c.probe(ctx)
}

func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return apperr.NewModelUnavailableError("detection model health probe", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.NewModelUnavailableError("detection model is not reachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperr.NewModelUnavailableError(
			fmt.Sprintf("detection model unhealthy: status %d", resp.StatusCode), nil)
	}
	c.ready.Store(true)
	return nil
}

// Detect implements the vision.Detector port: multipart upload of the raw
// image plus the confidence threshold.
func (c *Client) Detect(ctx context.Context, image []byte, confThreshold float64) ([]vision.RawDetection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.jpg")
	if err != nil {
		return nil, apperr.NewInternalError("create form file", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(image)); err != nil {
		return nil, apperr.NewInternalError("copy image data", err)
	}
	if err := writer.WriteField("conf", strconv.FormatFloat(confThreshold, 'f', -1, 64)); err != nil {
		return nil, apperr.NewInternalError("write conf field", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/detect", body)
	if err != nil {
		return nil, apperr.NewInternalError("create detect request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		c.ready.Store(false)
		return nil, apperr.NewModelUnavailableError("detection model is not reachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusServiceUnavailable {
			c.ready.Store(false)
		}
		return nil, apperr.NewModelUnavailableError(
			fmt.Sprintf("inference failed: status %d", resp.StatusCode), nil)
	}

	var result struct {
		Detections []vision.RawDetection `json:"detections"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperr.NewModelUnavailableError("decode inference response", err)
	}
	return result.Detections, nil
}
