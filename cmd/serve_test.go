package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

// newTestServer builds the router on an in-memory store with a dry-run
// marketing client, so no request leaves the process.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	ctrl := workflow.NewController(nil, notify.NewDispatcher(dryRunClient{}))
	srv := httptest.NewServer(newRouter(st, ctrl))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestServeHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeJSON[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestServeCreateAndGetSession(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeJSON[workflow.Session](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, workflow.StageUpload, created.Stage)

	resp2, err := http.Get(srv.URL + "/sessions/" + created.ID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	got := decodeJSON[workflow.Session](t, resp2)
	assert.Equal(t, created.ID, got.ID)

	resp3, err := http.Get(srv.URL + "/sessions")
	require.NoError(t, err)
	list := decodeJSON[[]store.SessionSummary](t, resp3)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestServeGetSessionNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/sessions/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServeCommandJumpSynthesizes(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[workflow.Session](t, postJSON(t, srv.URL+"/sessions", nil))

	resp := postJSON(t, srv.URL+"/sessions/"+created.ID+"/command",
		workflow.Command{Name: workflow.CmdJump, Stage: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[commandResponse](t, resp)
	assert.Equal(t, workflow.StageNotify, out.Session.Stage)
	assert.NotEmpty(t, out.Notices, "jump from empty synthesizes sample datasets")
	assert.NotEmpty(t, out.Session.Final)
}

func TestServeCommandUnknown(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[workflow.Session](t, postJSON(t, srv.URL+"/sessions", nil))

	resp := postJSON(t, srv.URL+"/sessions/"+created.ID+"/command",
		workflow.Command{Name: "explode"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServeCommandBadBody(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[workflow.Session](t, postJSON(t, srv.URL+"/sessions", nil))

	resp, err := http.Post(srv.URL+"/sessions/"+created.ID+"/command", "application/json",
		strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServeDispatchAndLedgerCSV(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[workflow.Session](t, postJSON(t, srv.URL+"/sessions", nil))

	resp := postJSON(t, srv.URL+"/sessions/"+created.ID+"/command",
		workflow.Command{Name: workflow.CmdNotifyDispatch})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeJSON[commandResponse](t, resp)
	assert.Len(t, out.Session.Ledger, 9, "sample dataset dispatched per record")

	csvResp, err := http.Get(srv.URL + "/sessions/" + created.ID + "/ledger.csv")
	require.NoError(t, err)
	defer csvResp.Body.Close()
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	assert.Equal(t, "text/csv", csvResp.Header.Get("Content-Type"))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(csvResp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "id,name,contact,type,timestamp,status,response", lines[0])
}

func TestServeDeleteSession(t *testing.T) {
	srv := newTestServer(t)

	created := decodeJSON[workflow.Session](t, postJSON(t, srv.URL+"/sessions", nil))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/"+created.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/sessions/" + created.ID)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
