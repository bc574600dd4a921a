// Package campaign loads declarative campaign files describing how a
// notification batch should be dispatched.
package campaign

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/notify"
)

// Campaign declares dispatch settings for one outreach batch.
type Campaign struct {
	Name           string  `yaml:"name"`
	Mode           string  `yaml:"mode"`             // per_record | per_owner
	GroupBy        string  `yaml:"group_by"`         // id_name | id
	SendsPerSecond float64 `yaml:"sends_per_second"` // 0 disables pacing
}

// Default returns the canonical campaign settings: per-record dispatch,
// id+name grouping, no pacing.
func Default() Campaign {
	return Campaign{
		Mode:    string(notify.ModePerRecord),
		GroupBy: string(contact.GroupByIDName),
	}
}

// Load reads and validates a campaign YAML file.
func Load(path string) (Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Campaign{}, eris.Wrapf(err, "campaign: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates campaign YAML. Absent fields fall back to the
// canonical defaults.
func Parse(data []byte) (Campaign, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Campaign{}, eris.Wrap(err, "campaign: unmarshal yaml")
	}
	if err := c.Validate(); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// Validate checks the enum fields and pacing.
func (c Campaign) Validate() error {
	if _, err := notify.ParseDispatchMode(c.Mode); err != nil {
		return eris.Wrap(err, "campaign: mode")
	}
	if _, err := contact.ParseGroupPolicy(c.GroupBy); err != nil {
		return eris.Wrap(err, "campaign: group_by")
	}
	if c.SendsPerSecond < 0 {
		return eris.Errorf("campaign: sends_per_second must be >= 0, got %v", c.SendsPerSecond)
	}
	return nil
}

// DispatchMode returns the parsed dispatch mode.
func (c Campaign) DispatchMode() notify.DispatchMode {
	m, _ := notify.ParseDispatchMode(c.Mode)
	return m
}

// GroupPolicy returns the parsed grouping policy.
func (c Campaign) GroupPolicy() contact.GroupPolicy {
	p, _ := contact.ParseGroupPolicy(c.GroupBy)
	return p
}
