// Package removebg is a small client for the remove.bg background removal API.
package removebg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	DefaultEndpoint = "https://api.remove.bg/v1.0/removebg"

	maxResultSize = 32 << 20
)

// Error is a non-2xx answer from the API. Message carries the upstream
// explanation when the body could be decoded.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remove.bg: status %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	backoff    func() retry.Backoff
}

func New(endpoint, apiKey string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		backoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(250*time.Millisecond))
		},
	}
}

// RemoveBackground uploads image and returns the cut-out PNG. Server-side
// failures (5xx, 429) are retried a couple of times; 4xx answers are final.
func (c *Client) RemoveBackground(ctx context.Context, image []byte, contentType string) ([]byte, error) {
	body, formType, err := buildForm(image, contentType)
	if err != nil {
		return nil, err
	}

	var out []byte
	err = retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		res, err := c.send(ctx, body, formType)
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
				return err
			}
			return retry.RetryableError(err)
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, body []byte, formType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", formType)
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "image/png, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remove.bg: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResultSize))
	if err != nil {
		return nil, fmt.Errorf("remove.bg: read body: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}
	return data, nil
}

func buildForm(image []byte, contentType string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("size", "auto"); err != nil {
		return nil, "", err
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image_file"; filename="image"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(image); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// errorMessage pulls errors[0].title out of the API's JSON error body.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 && payload.Errors[0].Title != "" {
		return payload.Errors[0].Title
	}
	return fallback
}
