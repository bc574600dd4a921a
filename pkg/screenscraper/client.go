// Package screenscraper is a client for the house-screenscraper job API: a
// property CSV is uploaded as an asynchronous job whose contact results are
// downloaded once the job reports completion.
package screenscraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the screenscraper API.
const defaultBaseURL = "http://llmmsi.a.pinggy.link/house-screenscraper/api"

// Client defines the screenscraper job operations.
type Client interface {
	Upload(ctx context.Context, filename string, csvData []byte) (*UploadResponse, error)
	JobStatus(ctx context.Context, jobID string) (*JobStatusResponse, error)
	Download(ctx context.Context, jobID string) ([]ContactResult, error)
}

// UploadResponse is the response from POST /upload.
type UploadResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// JobStatusResponse is the response from GET /job/{id}. Fields beyond the
// three stable ones are kept so callers can merge the whole payload into
// their stored job record.
type JobStatusResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ContactResult is one scraped contact row from GET /download/{id}/json.
// Selected is a pointer so an absent field is distinguishable from an
// explicit false: the scraper omits it for rows it did not pre-screen, and
// those rows count as selected.
type ContactResult struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	Address        string `json:"address"`
	CurrentAddress string `json:"current_address"`
	Selected       *bool  `json:"selected,omitempty"`
}

// APIError is returned when the service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("screenscraper: HTTP %d: %s", e.StatusCode, e.Body)
}

// Option configures the httpClient.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a new screenscraper client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Upload(ctx context.Context, filename string, csvData []byte) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, eris.Wrap(err, "screenscraper: create form file")
	}
	if _, err := part.Write(csvData); err != nil {
		return nil, eris.Wrap(err, "screenscraper: write form file")
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "screenscraper: close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, eris.Wrap(err, "screenscraper: create upload request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp UploadResponse
	if err := c.do(req, &resp); err != nil {
		return nil, eris.Wrap(err, "screenscraper: upload")
	}
	return &resp, nil
}

func (c *httpClient) JobStatus(ctx context.Context, jobID string) (*JobStatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/job/%s", c.baseURL, jobID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "screenscraper: create status request")
	}

	var resp JobStatusResponse
	if err := c.do(req, &resp); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("screenscraper: job status %s", jobID))
	}
	return &resp, nil
}

func (c *httpClient) Download(ctx context.Context, jobID string) ([]ContactResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/download/%s/json", c.baseURL, jobID), nil)
	if err != nil {
		return nil, eris.Wrap(err, "screenscraper: create download request")
	}

	var results []ContactResult
	if err := c.do(req, &results); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("screenscraper: download %s", jobID))
	}
	return results, nil
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
