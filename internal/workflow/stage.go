// Package workflow implements the five-stage outreach workflow: the session
// context object, the stage controller with fallback synthesis for skip-ahead
// navigation, and the named-command dispatch used by the CLI and HTTP
// surfaces.
package workflow

import "github.com/rotisserie/eris"

// Stage is one of the five ordered workflow steps.
type Stage int

const (
	StageUpload Stage = iota + 1
	StageReview
	StageScrape
	StageSelect
	StageNotify
)

// FirstStage and LastStage bound the valid stage range.
const (
	FirstStage = StageUpload
	LastStage  = StageNotify
)

var stageNames = map[Stage]string{
	StageUpload: "Upload CSVs",
	StageReview: "Review & Edit",
	StageScrape: "Scrape Data",
	StageSelect: "Select Data",
	StageNotify: "Send Notifications",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is within 1..5.
func (s Stage) Valid() bool {
	return s >= FirstStage && s <= LastStage
}

// ParseStage converts a 1-based stage number into a Stage.
func ParseStage(n int) (Stage, error) {
	s := Stage(n)
	if !s.Valid() {
		return 0, eris.Errorf("workflow: stage %d out of range 1..%d", n, int(LastStage))
	}
	return s, nil
}
