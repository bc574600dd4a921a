package store

import (
	"context"
	"time"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

// SessionFilter specifies criteria for listing sessions.
type SessionFilter struct {
	Stage  workflow.Stage `json:"stage,omitempty"`
	Limit  int            `json:"limit,omitempty"`
	Offset int            `json:"offset,omitempty"`
}

// SessionSummary is the listing row for a stored session. The full session
// payload is only loaded by GetSession.
type SessionSummary struct {
	ID        string         `json:"id"`
	Stage     workflow.Stage `json:"stage"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store defines the persistence interface for workflow sessions and their
// notification outcome ledgers.
type Store interface {
	// Sessions
	SaveSession(ctx context.Context, s *workflow.Session) error
	GetSession(ctx context.Context, id string) (*workflow.Session, error)
	ListSessions(ctx context.Context, filter SessionFilter) ([]SessionSummary, error)
	DeleteSession(ctx context.Context, id string) error

	// Outcome ledger
	AppendOutcomes(ctx context.Context, sessionID string, rows []model.NotificationOutcome) error
	ListOutcomes(ctx context.Context, sessionID string) ([]model.NotificationOutcome, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
