package screenscraper

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceClient replays a fixed sequence of job statuses, repeating the last
// entry once the sequence is exhausted.
type sequenceClient struct {
	statuses []JobStatusResponse
	errs     []error
	calls    int
}

func (c *sequenceClient) Upload(context.Context, string, []byte) (*UploadResponse, error) {
	return nil, eris.New("not implemented")
}

func (c *sequenceClient) Download(context.Context, string) ([]ContactResult, error) {
	return nil, eris.New("not implemented")
}

func (c *sequenceClient) JobStatus(_ context.Context, jobID string) (*JobStatusResponse, error) {
	i := c.calls
	if i >= len(c.statuses) {
		i = len(c.statuses) - 1
	}
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	status := c.statuses[i]
	status.JobID = jobID
	return &status, nil
}

func TestPollCompleted(t *testing.T) {
	t.Parallel()

	client := &sequenceClient{statuses: []JobStatusResponse{
		{Status: "pending"},
		{Status: "running"},
		{Status: "completed", Message: "done"},
	}}

	status, err := Poll(context.Background(), client, "job-1",
		WithPollInterval(time.Millisecond), WithPollCap(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, "completed", status.Status)
	assert.Equal(t, 3, client.calls)
}

func TestPollFailed(t *testing.T) {
	t.Parallel()

	client := &sequenceClient{statuses: []JobStatusResponse{
		{Status: "running"},
		{Status: "failed", Message: "parser crashed"},
	}}

	_, err := Poll(context.Background(), client, "job-1",
		WithPollInterval(time.Millisecond), WithPollCap(time.Millisecond))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "job job-1 failed")
	assert.Contains(t, err.Error(), "parser crashed")
}

func TestPollStatusError(t *testing.T) {
	t.Parallel()

	client := &sequenceClient{
		statuses: []JobStatusResponse{{}},
		errs:     []error{eris.New("connection refused")},
	}

	_, err := Poll(context.Background(), client, "job-1",
		WithPollInterval(time.Millisecond))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll job job-1")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPollTimeout(t *testing.T) {
	t.Parallel()

	client := &sequenceClient{statuses: []JobStatusResponse{{Status: "running"}}}

	_, err := Poll(context.Background(), client, "job-1",
		WithPollInterval(5*time.Millisecond),
		WithPollCap(5*time.Millisecond),
		WithPollTimeout(25*time.Millisecond))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.GreaterOrEqual(t, client.calls, 1)
}

func TestPollRespectsParentDeadline(t *testing.T) {
	t.Parallel()

	client := &sequenceClient{statuses: []JobStatusResponse{{Status: "running"}}}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	// The long option timeout must not extend the parent deadline.
	_, err := Poll(ctx, client, "job-1",
		WithPollInterval(5*time.Millisecond),
		WithPollTimeout(time.Hour))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
