package workflow

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Command is one named user action. Every interaction with the workflow maps
// to exactly one command; the controller consumes it and mutates the session.
type Command struct {
	Name string `json:"name"`

	// Stage is the target for the jump command (1..5).
	Stage int `json:"stage,omitempty"`

	// Properties carries the dataset for upload.properties / edit.properties.
	Properties []model.PropertyRecord `json:"properties,omitempty"`

	// Contacts carries selection edits for select.apply.
	Contacts []model.ContactRecord `json:"contacts,omitempty"`
}

// Command names accepted by Apply.
const (
	CmdAdvance          = "advance"
	CmdRetreat          = "retreat"
	CmdJump             = "jump"
	CmdReset            = "reset"
	CmdUploadProperties = "upload.properties"
	CmdEditProperties   = "edit.properties"
	CmdScrapeSubmit     = "scrape.submit"
	CmdScrapePoll       = "scrape.poll"
	CmdScrapeFetch      = "scrape.fetch"
	CmdSelectApply      = "select.apply"
	CmdSelectReduce     = "select.reduce"
	CmdNotifyDispatch   = "notify.dispatch"
)

// Apply routes a command to the matching stage operation. Navigation
// commands never fail; stage operations surface collaborator and validation
// errors, which leave the session recoverable.
func (c *Controller) Apply(ctx context.Context, s *Session, cmd Command) ([]Notice, error) {
	switch cmd.Name {
	case CmdAdvance:
		s.Advance()
		return nil, nil
	case CmdRetreat:
		s.Retreat()
		return nil, nil
	case CmdJump:
		target, err := ParseStage(cmd.Stage)
		if err != nil {
			return nil, err
		}
		return s.Jump(target), nil
	case CmdReset:
		s.Reset()
		return nil, nil
	case CmdUploadProperties:
		c.UploadProperties(s, cmd.Properties, "")
		return nil, nil
	case CmdEditProperties:
		c.EditProperties(s, cmd.Properties)
		return nil, nil
	case CmdScrapeSubmit:
		return c.SubmitScrape(ctx, s)
	case CmdScrapePoll:
		return nil, c.PollScrape(ctx, s)
	case CmdScrapeFetch:
		return c.FetchScrape(ctx, s)
	case CmdSelectApply:
		return c.ApplySelection(s, cmd.Contacts), nil
	case CmdSelectReduce:
		return c.ReduceContacts(s), nil
	case CmdNotifyDispatch:
		_, notices, err := c.Dispatch(ctx, s)
		return notices, err
	}
	return nil, eris.Errorf("workflow: unknown command %q", cmd.Name)
}
