package campaign

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/notify"
)

func TestParseDefaults(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte("name: spring-cycle\n"))
	require.NoError(t, err)
	assert.Equal(t, "spring-cycle", c.Name)
	assert.Equal(t, notify.ModePerRecord, c.DispatchMode())
	assert.Equal(t, contact.GroupByIDName, c.GroupPolicy())
	assert.Zero(t, c.SendsPerSecond)
}

func TestParseFull(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`
name: bundled
mode: per_owner
group_by: id
sends_per_second: 2.5
`))
	require.NoError(t, err)
	assert.Equal(t, notify.ModePerOwner, c.DispatchMode())
	assert.Equal(t, contact.GroupByID, c.GroupPolicy())
	assert.InDelta(t, 2.5, c.SendsPerSecond, 0.001)
}

func TestParseInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"bad mode", "mode: broadcast\n"},
		{"bad group_by", "group_by: zipcode\n"},
		{"negative pacing", "sends_per_second: -1\n"},
		{"bad yaml", ":\n-\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "campaign.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\nmode: per_owner\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.Name)
	assert.Equal(t, notify.ModePerOwner, c.DispatchMode())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
