// Package compare is a client for the pc-house-automation comparison
// service, which diffs two uploaded tax-roll files and returns the new
// delinquent rows.
package compare

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

	"github.com/sells-group/outreach-cli/internal/model"
)

// Default base URL for the comparison API.
const defaultBaseURL = "https://llmmsi.a.pinggy.link/pc-house-automation"

// Result is the response from POST /check_new_rows: the rows present in the
// second file but not the first, as both structured records and raw CSV.
type Result struct {
	Count int                    `json:"count"`
	JSON  []model.PropertyRecord `json:"json"`
	CSV   string                 `json:"csv"`
}

// Client defines the comparison operations.
type Client interface {
	CheckNewRows(ctx context.Context, file1Name string, file1 []byte, file2Name string, file2 []byte) (*Result, error)
}

// APIError is returned when the service responds with a non-200 status. The
// raw body is kept so it can be surfaced to the user.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("compare: HTTP %d: %s", e.StatusCode, e.Body)
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

// NewClient creates a new comparison client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 120 * time.Second,
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

func (c *httpClient) CheckNewRows(ctx context.Context, file1Name string, file1 []byte, file2Name string, file2 []byte) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range []struct {
		field, name string
		data        []byte
	}{
		{"file1", file1Name, file1},
		{"file2", file2Name, file2},
	} {
		part, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			return nil, eris.Wrapf(err, "compare: create form file %s", f.field)
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, eris.Wrapf(err, "compare: write form file %s", f.field)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "compare: close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/check_new_rows", &buf)
	if err != nil {
		return nil, eris.Wrap(err, "compare: create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "compare: execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "compare: read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, eris.Wrap(err, "compare: decode response")
	}

	return &result, nil
}
