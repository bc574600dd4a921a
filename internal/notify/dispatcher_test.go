package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/marketing"
)

// stubClient records payloads and returns scripted results per call.
type stubClient struct {
	payloads []marketing.Payload
	results  []error
}

func (s *stubClient) Send(_ context.Context, p marketing.Payload) (json.RawMessage, error) {
	s.payloads = append(s.payloads, p)
	var err error
	if len(s.results) > 0 {
		err = s.results[0]
		s.results = s.results[1:]
	}
	if err != nil {
		return nil, err
	}
	return json.RawMessage(`{"status":"queued"}`), nil
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func sendable(id, name string, typ model.ContactType, value string) model.ContactRecord {
	return model.ContactRecord{
		ID: id, Name: name, Type: typ, Value: value,
		Address: "123 Test Street", CurrentAddress: "123 Test Street",
		Selected: true, SendTo: true,
	}
}

func TestDispatchPerRecord(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	d := NewDispatcher(client, WithClock(fixedClock()))

	contacts := []model.ContactRecord{
		sendable("P1", "A", model.ContactTypePhone, "111"),
		sendable("P1", "A", model.ContactTypeEmail, "a@x.com"),
	}

	ledger := d.Dispatch(context.Background(), contacts)
	require.Len(t, ledger, 2)
	require.Len(t, client.payloads, 2, "one call per record")

	assert.Equal(t, "111", client.payloads[0].PhoneNumber)
	assert.Empty(t, client.payloads[0].Email)
	assert.Equal(t, "a@x.com", client.payloads[1].Email)
	assert.Empty(t, client.payloads[1].PhoneNumber)

	assert.Equal(t, model.ChannelCallSMS, ledger[0].Channel)
	assert.Equal(t, model.ChannelEmail, ledger[1].Channel)
	assert.Equal(t, "2024-03-01 12:00:00", ledger[0].Timestamp)
	for _, row := range ledger {
		assert.Equal(t, model.SendStatusSent, row.Status)
		assert.JSONEq(t, `{"status":"queued"}`, row.Response)
	}
}

func TestDispatchSkipsUnselected(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	d := NewDispatcher(client, WithClock(fixedClock()))

	skip := sendable("P2", "B", model.ContactTypePhone, "222")
	skip.SendTo = false

	ledger := d.Dispatch(context.Background(), []model.ContactRecord{
		sendable("P1", "A", model.ContactTypePhone, "111"),
		skip,
	})
	require.Len(t, ledger, 1)
	assert.Equal(t, "111", ledger[0].Contact)
}

func TestDispatchContinuesPastFailures(t *testing.T) {
	t.Parallel()

	client := &stubClient{results: []error{
		nil,
		eris.New("marketing: HTTP 500: boom"),
		nil,
	}}
	d := NewDispatcher(client, WithClock(fixedClock()))

	contacts := []model.ContactRecord{
		sendable("P1", "A", model.ContactTypePhone, "111"),
		sendable("P2", "B", model.ContactTypePhone, "222"),
		sendable("P3", "C", model.ContactTypeEmail, "c@x.com"),
	}

	ledger := d.Dispatch(context.Background(), contacts)
	require.Len(t, ledger, 3, "batch runs to completion")

	assert.Equal(t, model.SendStatusSent, ledger[0].Status)
	assert.Equal(t, model.SendStatusFailed, ledger[1].Status)
	assert.Contains(t, ledger[1].Response, "HTTP 500")
	assert.Equal(t, model.SendStatusSent, ledger[2].Status)
}

func TestDispatchPerOwnerBundles(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	d := NewDispatcher(client, WithMode(ModePerOwner), WithClock(fixedClock()))

	contacts := []model.ContactRecord{
		sendable("P1", "A", model.ContactTypePhone, "111"),
		sendable("P1", "A", model.ContactTypeEmail, "a@x.com"),
		sendable("P2", "B", model.ContactTypePhone, "222"),
	}

	ledger := d.Dispatch(context.Background(), contacts)
	require.Len(t, client.payloads, 2, "one call per owner")
	require.Len(t, ledger, 3, "one row per channel present")

	assert.Equal(t, "111", client.payloads[0].PhoneNumber)
	assert.Equal(t, "a@x.com", client.payloads[0].Email)
	assert.Equal(t, "222", client.payloads[1].PhoneNumber)
	assert.Empty(t, client.payloads[1].Email)
}

func TestDispatchPerOwnerFansOutFailure(t *testing.T) {
	t.Parallel()

	client := &stubClient{results: []error{eris.New("transport down")}}
	d := NewDispatcher(client, WithMode(ModePerOwner), WithClock(fixedClock()))

	contacts := []model.ContactRecord{
		sendable("P1", "A", model.ContactTypePhone, "111"),
		sendable("P1", "A", model.ContactTypeEmail, "a@x.com"),
	}

	ledger := d.Dispatch(context.Background(), contacts)
	require.Len(t, ledger, 2)
	for _, row := range ledger {
		assert.Equal(t, model.SendStatusFailed, row.Status)
		assert.Contains(t, row.Response, "transport down")
	}
}

func TestDispatchPerOwnerSkipsChannellessOwner(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	d := NewDispatcher(client, WithMode(ModePerOwner), WithClock(fixedClock()))

	// An unrecognized type that slipped past repair leaves the owner with no
	// dispatchable channel. The owner is skipped; the rest of the batch runs.
	contacts := []model.ContactRecord{
		sendable("P1", "A", "fax", "111"),
		sendable("P2", "B", model.ContactTypeEmail, "b@x.com"),
	}

	ledger := d.Dispatch(context.Background(), contacts)
	require.Len(t, client.payloads, 1, "only the owner with a channel is called")
	require.Len(t, ledger, 1)
	assert.Equal(t, "b@x.com", ledger[0].Contact)
}

func TestDispatchEmptyInput(t *testing.T) {
	t.Parallel()

	client := &stubClient{}
	d := NewDispatcher(client)

	ledger := d.Dispatch(context.Background(), nil)
	assert.Empty(t, ledger)
	assert.Empty(t, client.payloads)
}

func TestParseDispatchMode(t *testing.T) {
	t.Parallel()

	m, err := ParseDispatchMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePerRecord, m)

	m, err = ParseDispatchMode("per_owner")
	require.NoError(t, err)
	assert.Equal(t, ModePerOwner, m)

	_, err = ParseDispatchMode("broadcast")
	require.Error(t, err)
}
