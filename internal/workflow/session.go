package workflow

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ScrapeJob is the stored reference to an in-flight screen-scraper job.
// Status payloads from polls are merged into it.
type ScrapeJob struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Completed reports whether the remote job has finished and its results can
// be downloaded.
func (j *ScrapeJob) Completed() bool {
	return j != nil && j.Status == "completed"
}

// Session is the explicit workflow context for one user session. Every stage
// handler takes the session it acts on; there is no global state. Dataset
// presence is modeled as nil vs non-nil slices.
type Session struct {
	ID    string `json:"id"`
	Stage Stage  `json:"stage"`

	Properties []model.PropertyRecord      `json:"properties,omitempty"`
	RawCSV     string                      `json:"raw_csv,omitempty"`
	Scraped    []model.ContactRecord       `json:"scraped,omitempty"`
	Final      []model.ContactRecord       `json:"final,omitempty"`
	Job        *ScrapeJob                  `json:"job,omitempty"`
	Ledger     []model.NotificationOutcome `json:"ledger,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a session at the Upload stage with no datasets.
func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Stage:     FirstStage,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Advance moves to the next stage. At the last stage it is a no-op; stage
// transitions are total functions and never fail.
func (s *Session) Advance() {
	if s.Stage >= LastStage {
		zap.L().Warn("workflow: advance past last stage ignored", zap.Int("stage", int(s.Stage)))
		return
	}
	s.Stage++
	s.touch()
}

// Retreat moves to the previous stage. At the first stage it is a no-op.
func (s *Session) Retreat() {
	if s.Stage <= FirstStage {
		zap.L().Warn("workflow: retreat before first stage ignored", zap.Int("stage", int(s.Stage)))
		return
	}
	s.Stage--
	s.touch()
}

// Reset returns the session to the Upload stage and clears every dataset,
// the job reference, and the ledger. The session identity survives.
func (s *Session) Reset() {
	s.Stage = FirstStage
	s.Properties = nil
	s.RawCSV = ""
	s.Scraped = nil
	s.Final = nil
	s.Job = nil
	s.Ledger = nil
	s.touch()
}

// Jump navigates directly to target, synthesizing any dataset required by
// stages 1..target that is still absent so downstream stages never observe
// missing data. Synthesized datasets come from the fixed sample fixtures.
// Returned notices are informational, never errors.
func (s *Session) Jump(target Stage) []Notice {
	if !target.Valid() {
		// Callers validate; clamp defensively so Jump stays total.
		if target < FirstStage {
			target = FirstStage
		} else {
			target = LastStage
		}
	}

	var notices []Notice

	if target >= StageReview && s.Properties == nil {
		s.Properties = model.SampleProperties()
		notices = append(notices, Infof("using sample property data since no data was provided in previous steps"))
	}
	if target >= StageSelect && s.Scraped == nil {
		s.Scraped = model.SampleContacts()
		notices = append(notices, Infof("using sample contact data since no scraping was performed"))
	}
	if target >= StageNotify && s.Final == nil {
		s.Final = model.SampleContactsMultiOwner()
		notices = append(notices, Infof("using sample contact data since no contacts were selected in previous steps"))
	}

	s.Stage = target
	s.touch()
	return notices
}
