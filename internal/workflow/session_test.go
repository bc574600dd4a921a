package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
)

func TestParseStage(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 5; n++ {
		s, err := ParseStage(n)
		require.NoError(t, err)
		assert.True(t, s.Valid())
	}

	for _, n := range []int{0, -1, 6, 100} {
		_, err := ParseStage(n)
		require.Error(t, err, "stage %d", n)
	}
}

func TestStageString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Upload CSVs", StageUpload.String())
	assert.Equal(t, "Send Notifications", StageNotify.String())
	assert.Equal(t, "Unknown", Stage(9).String())
}

func TestNewSession(t *testing.T) {
	t.Parallel()

	s := NewSession()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StageUpload, s.Stage)
	assert.Nil(t, s.Properties)
	assert.Nil(t, s.Scraped)
	assert.Nil(t, s.Final)
	assert.Nil(t, s.Ledger)
}

func TestAdvanceRetreatClamped(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Retreat()
	assert.Equal(t, StageUpload, s.Stage, "retreat at first stage is a no-op")

	for i := 0; i < 10; i++ {
		s.Advance()
	}
	assert.Equal(t, StageNotify, s.Stage, "advance at last stage is a no-op")

	s.Retreat()
	assert.Equal(t, StageSelect, s.Stage)
}

func TestJumpSynthesizesPrerequisites(t *testing.T) {
	t.Parallel()

	// For every target, jumping from an entirely empty session must leave
	// each dataset required by stages 1..target non-absent.
	for target := FirstStage; target <= LastStage; target++ {
		s := NewSession()
		notices := s.Jump(target)
		assert.Equal(t, target, s.Stage)

		if target >= StageReview {
			assert.NotNil(t, s.Properties, "target %d needs properties", target)
		}
		if target >= StageSelect {
			assert.NotNil(t, s.Scraped, "target %d needs scraped contacts", target)
		}
		if target >= StageNotify {
			assert.NotNil(t, s.Final, "target %d needs final contacts", target)
		}
		for _, n := range notices {
			assert.Equal(t, NoticeInfo, n.Level)
		}
	}
}

func TestJumpToNotifyFromEmpty(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Jump(StageNotify)

	require.Equal(t, StageNotify, s.Stage)
	require.NotEmpty(t, s.Final)

	var phones, emails int
	for _, c := range s.Final {
		switch c.Type {
		case model.ContactTypePhone:
			phones++
		case model.ContactTypeEmail:
			emails++
		}
	}
	assert.GreaterOrEqual(t, phones, 1)
	assert.GreaterOrEqual(t, emails, 1)
}

func TestJumpPreservesExistingData(t *testing.T) {
	t.Parallel()

	s := NewSession()
	props := []model.PropertyRecord{{AccountNumber: "REAL-1", OwnerName: "Real Owner"}}
	s.Properties = props

	notices := s.Jump(StageScrape)
	assert.Equal(t, props, s.Properties, "real data is never replaced by samples")
	assert.Empty(t, notices)
}

func TestJumpBackwardsKeepsData(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Jump(StageNotify)
	final := s.Final

	s.Jump(StageUpload)
	assert.Equal(t, StageUpload, s.Stage)
	assert.Equal(t, final, s.Final)
}

func TestReset(t *testing.T) {
	t.Parallel()

	s := NewSession()
	id := s.ID
	s.Jump(StageNotify)
	s.RawCSV = "a,b\n"
	s.Job = &ScrapeJob{JobID: "j1", Status: "completed"}
	s.Ledger = []model.NotificationOutcome{{ID: "P1", Status: model.SendStatusSent}}

	s.Reset()

	assert.Equal(t, id, s.ID, "session identity survives reset")
	assert.Equal(t, StageUpload, s.Stage)
	assert.Nil(t, s.Properties)
	assert.Empty(t, s.RawCSV)
	assert.Nil(t, s.Scraped)
	assert.Nil(t, s.Final)
	assert.Nil(t, s.Job)
	assert.Nil(t, s.Ledger)
}

func TestScrapeJobCompleted(t *testing.T) {
	t.Parallel()

	var j *ScrapeJob
	assert.False(t, j.Completed())
	assert.False(t, (&ScrapeJob{Status: "processing"}).Completed())
	assert.True(t, (&ScrapeJob{Status: "completed"}).Completed())
}
