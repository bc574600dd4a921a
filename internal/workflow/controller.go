package workflow

import (
	"bytes"
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/pkg/screenscraper"
)

// Controller applies user commands to a session. Stage handlers are
// functions of (session, command): the only side effects are the collaborator
// calls made by the scrape and notify stages.
type Controller struct {
	scraper    screenscraper.Client
	dispatcher *notify.Dispatcher
	reducer    contact.Reducer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithReducer overrides the canonical id+name reducer.
func WithReducer(r contact.Reducer) ControllerOption {
	return func(c *Controller) {
		c.reducer = r
	}
}

// NewController creates a Controller. scraper and dispatcher may be nil for
// sessions that never reach the scrape or notify stages (e.g. offline review).
func NewController(scraper screenscraper.Client, dispatcher *notify.Dispatcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		scraper:    scraper,
		dispatcher: dispatcher,
		reducer:    contact.NewReducer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UploadProperties stores a freshly ingested property dataset on the
// session, replacing whatever was there.
func (c *Controller) UploadProperties(s *Session, records []model.PropertyRecord, rawCSV string) {
	s.Properties = records
	s.RawCSV = rawCSV
	s.touch()
}

// EditProperties replaces the property dataset with the user's review edits.
func (c *Controller) EditProperties(s *Session, records []model.PropertyRecord) {
	s.Properties = records
	s.touch()
}

// SubmitScrape uploads the session's property dataset as a new scraper job
// and stores the job reference. A missing dataset is synthesized from the
// sample fixture first.
func (c *Controller) SubmitScrape(ctx context.Context, s *Session) ([]Notice, error) {
	if c.scraper == nil {
		return nil, eris.New("workflow: no scraper client configured")
	}

	var notices []Notice
	if s.Properties == nil {
		s.Properties = model.SampleProperties()
		notices = append(notices, Infof("using sample property data since no data was provided in previous steps"))
	}

	var buf bytes.Buffer
	if err := ingest.WritePropertiesCSV(&buf, s.Properties); err != nil {
		return notices, eris.Wrap(err, "workflow: build scrape csv")
	}

	resp, err := c.scraper.Upload(ctx, "properties.csv", buf.Bytes())
	if err != nil {
		return notices, eris.Wrap(err, "workflow: submit scrape job")
	}

	s.Job = &ScrapeJob{JobID: resp.JobID, Status: resp.Status, Message: resp.Message}
	s.touch()
	zap.L().Info("workflow: scrape job submitted",
		zap.String("session", s.ID),
		zap.String("job_id", resp.JobID),
		zap.String("status", resp.Status),
	)
	return notices, nil
}

// PollScrape refreshes the stored job record from the scraper service.
func (c *Controller) PollScrape(ctx context.Context, s *Session) error {
	if c.scraper == nil {
		return eris.New("workflow: no scraper client configured")
	}
	if s.Job == nil {
		return eris.New("workflow: no scrape job submitted")
	}

	status, err := c.scraper.JobStatus(ctx, s.Job.JobID)
	if err != nil {
		return eris.Wrap(err, "workflow: poll scrape job")
	}

	// Merge the status payload into the stored record.
	s.Job.Status = status.Status
	if status.Message != "" {
		s.Job.Message = status.Message
	}
	s.touch()
	return nil
}

// FetchScrape downloads a completed job's contact results, repairs them into
// canonical records, and stores them as the scraped dataset.
func (c *Controller) FetchScrape(ctx context.Context, s *Session) ([]Notice, error) {
	if c.scraper == nil {
		return nil, eris.New("workflow: no scraper client configured")
	}
	if s.Job == nil {
		return nil, eris.New("workflow: no scrape job submitted")
	}
	if !s.Job.Completed() {
		return nil, eris.Errorf("workflow: scrape job %s not completed (status %s)", s.Job.JobID, s.Job.Status)
	}

	results, err := c.scraper.Download(ctx, s.Job.JobID)
	if err != nil {
		return nil, eris.Wrap(err, "workflow: download scrape results")
	}

	records := make([]model.ContactRecord, len(results))
	for i, r := range results {
		records[i] = model.ContactRecord{
			ID:             r.ID,
			Name:           r.Name,
			Type:           model.ContactType(r.Type),
			Value:          r.Value,
			Address:        r.Address,
			CurrentAddress: r.CurrentAddress,
			// Rows without an explicit selected flag are selected.
			Selected: r.Selected == nil || *r.Selected,
		}
	}

	repaired, warnings := contact.Repair(records)
	notices := make([]Notice, 0, len(warnings))
	for _, w := range warnings {
		notices = append(notices, Warnf("%s", w))
	}

	s.Scraped = repaired
	s.touch()
	return notices, nil
}

// LoadContacts normalizes an uploaded contact table into the scraped
// dataset and pre-selects the final dataset from its selected rows. The
// whole upload is rejected when required columns are missing.
func (c *Controller) LoadContacts(s *Session, raw contact.RawTable) ([]Notice, error) {
	records, warnings, err := contact.Normalize(raw)
	if err != nil {
		return nil, err
	}

	notices := make([]Notice, 0, len(warnings))
	for _, w := range warnings {
		notices = append(notices, Warnf("%s", w))
	}

	s.Scraped = records
	s.Final = selectedSubset(records)
	s.touch()
	return notices, nil
}

// ApplySelection replaces the scraped dataset with the user's selection
// edits and recomputes the final dataset from the selected rows. Edits go
// through the same repair pass as scrape results: no raw contact type may
// survive past this point.
func (c *Controller) ApplySelection(s *Session, records []model.ContactRecord) []Notice {
	repaired, warnings := contact.Repair(records)
	notices := make([]Notice, 0, len(warnings))
	for _, w := range warnings {
		notices = append(notices, Warnf("%s", w))
	}

	s.Scraped = repaired
	s.Final = selectedSubset(repaired)
	s.touch()
	return notices
}

// ReduceContacts collapses the final dataset to the first phone and first
// email per owner identity. A missing final dataset is synthesized first.
func (c *Controller) ReduceContacts(s *Session) []Notice {
	var notices []Notice
	if s.Final == nil {
		s.Final = model.SampleContactsMultiOwner()
		notices = append(notices, Infof("using sample contact data since no contacts were selected in previous steps"))
	}

	reduced := c.reducer.SelectFirstPerOwner(s.Final)
	if len(reduced) == 0 {
		notices = append(notices, Infof("nothing selected: contact dataset is empty"))
	}
	s.Final = reduced
	s.touch()
	return notices
}

// Dispatch sends notifications for the final dataset and appends the batch
// outcomes to the session ledger. Individual failures never abort the batch.
func (c *Controller) Dispatch(ctx context.Context, s *Session) ([]model.NotificationOutcome, []Notice, error) {
	if c.dispatcher == nil {
		return nil, nil, eris.New("workflow: no dispatcher configured")
	}

	var notices []Notice
	if s.Final == nil {
		s.Final = model.SampleContactsMultiOwner()
		notices = append(notices, Infof("using sample contact data since no contacts were selected in previous steps"))
	}

	batch := c.dispatcher.Dispatch(ctx, markSendable(s.Final))
	s.Ledger = append(s.Ledger, batch...)
	s.touch()

	zap.L().Info("workflow: dispatch complete",
		zap.String("session", s.ID),
		zap.Int("sent", countStatus(batch, model.SendStatusSent)),
		zap.Int("failed", countStatus(batch, model.SendStatusFailed)),
	)
	return batch, notices, nil
}

func selectedSubset(records []model.ContactRecord) []model.ContactRecord {
	out := make([]model.ContactRecord, 0, len(records))
	for _, r := range records {
		if r.Selected {
			out = append(out, r)
		}
	}
	return out
}

// markSendable sets SendTo on rows that never went through the reducer, so a
// fast-forwarded final dataset is still dispatchable. Rows already reduced
// keep their flags.
func markSendable(records []model.ContactRecord) []model.ContactRecord {
	any := false
	for _, r := range records {
		if r.SendTo {
			any = true
			break
		}
	}
	if any {
		return records
	}
	out := make([]model.ContactRecord, len(records))
	for i, r := range records {
		r.SendTo = r.Selected
		out[i] = r
	}
	return out
}

func countStatus(ledger []model.NotificationOutcome, status model.SendStatus) int {
	n := 0
	for _, row := range ledger {
		if row.Status == status {
			n++
		}
	}
	return n
}
