package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/pkg/marketing"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	orig := cfg
	cfg = &config.Config{}
	cfg.Campaign.Mode = "per_record"
	cfg.Campaign.GroupBy = "id_name"
	t.Cleanup(func() { cfg = orig })
}

func TestResolveCampaignDefaults(t *testing.T) {
	setTestConfig(t)

	camp, err := resolveCampaign("", "", "", 0)
	require.NoError(t, err)
	assert.Equal(t, notify.ModePerRecord, camp.DispatchMode())
	assert.Equal(t, contact.GroupByIDName, camp.GroupPolicy())
	assert.Zero(t, camp.SendsPerSecond)
}

func TestResolveCampaignFlagsOverride(t *testing.T) {
	setTestConfig(t)

	camp, err := resolveCampaign("", "per_owner", "id", 1.5)
	require.NoError(t, err)
	assert.Equal(t, notify.ModePerOwner, camp.DispatchMode())
	assert.Equal(t, contact.GroupByID, camp.GroupPolicy())
	assert.InDelta(t, 1.5, camp.SendsPerSecond, 0.001)
}

func TestResolveCampaignFileThenFlags(t *testing.T) {
	setTestConfig(t)

	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: spring\nmode: per_owner\ngroup_by: id\n"), 0644))

	camp, err := resolveCampaign(path, "per_record", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "spring", camp.Name)
	// Flag overrides file
	assert.Equal(t, notify.ModePerRecord, camp.DispatchMode())
	assert.Equal(t, contact.GroupByID, camp.GroupPolicy())
}

func TestResolveCampaignInvalidMode(t *testing.T) {
	setTestConfig(t)

	_, err := resolveCampaign("", "broadcast", "", 0)
	assert.Error(t, err)
}

func TestReadTableFileCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.csv")
	require.NoError(t, os.WriteFile(path, []byte("Account Number,Owner Name\nP1,A\n"), 0644))

	table, err := readTableFile(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "P1", table.Rows[0]["Account Number"])
}

func TestReadTableFileMissing(t *testing.T) {
	_, err := readTableFile(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
}

func TestDryRunClientEchoesPayload(t *testing.T) {
	raw, err := dryRunClient{}.Send(context.Background(), marketing.Payload{
		Name:    "A",
		Address: "1 Main St",
	})
	require.NoError(t, err)

	var body struct {
		DryRun  bool              `json:"dry_run"`
		Payload marketing.Payload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.DryRun)
	assert.Equal(t, "A", body.Payload.Name)
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeFileAtomic(path, func(f *os.File) error {
		_, err := f.WriteString("hello\n")
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
