package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/campaign"
	"github.com/sells-group/outreach-cli/internal/contact"
	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
	"github.com/sells-group/outreach-cli/pkg/marketing"
	"github.com/sells-group/outreach-cli/pkg/screenscraper"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "outreach.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initScraper() screenscraper.Client {
	return screenscraper.NewClient(screenscraper.WithBaseURL(cfg.Scraper.BaseURL))
}

func initMarketing() marketing.Client {
	return marketing.NewClient(marketing.WithBaseURL(cfg.Marketing.BaseURL))
}

// dryRunClient echoes payloads instead of calling the marketing service.
type dryRunClient struct{}

func (dryRunClient) Send(_ context.Context, p marketing.Payload) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]any{"dry_run": true, "payload": p})
	if err != nil {
		return nil, eris.Wrap(err, "dry run: marshal payload")
	}
	return body, nil
}

// resolveCampaign layers dispatch settings: config defaults, then an optional
// campaign file, then explicit flags.
func resolveCampaign(file, mode, groupBy string, rate float64) (campaign.Campaign, error) {
	camp := campaign.Default()
	if cfg.Campaign.Mode != "" {
		camp.Mode = cfg.Campaign.Mode
	}
	if cfg.Campaign.GroupBy != "" {
		camp.GroupBy = cfg.Campaign.GroupBy
	}
	camp.SendsPerSecond = cfg.Campaign.SendsPerSecond

	if file == "" {
		file = cfg.Campaign.File
	}
	if file != "" {
		loaded, err := campaign.Load(file)
		if err != nil {
			return campaign.Campaign{}, err
		}
		camp = loaded
	}

	if mode != "" {
		camp.Mode = mode
	}
	if groupBy != "" {
		camp.GroupBy = groupBy
	}
	if rate > 0 {
		camp.SendsPerSecond = rate
	}

	return camp, camp.Validate()
}

func newDispatcher(client marketing.Client, camp campaign.Campaign) *notify.Dispatcher {
	opts := []notify.Option{notify.WithMode(camp.DispatchMode())}
	if camp.SendsPerSecond > 0 {
		opts = append(opts, notify.WithRateLimit(camp.SendsPerSecond))
	}
	return notify.NewDispatcher(client, opts...)
}

func newController(scraper screenscraper.Client, dispatcher *notify.Dispatcher, camp campaign.Campaign) *workflow.Controller {
	return workflow.NewController(scraper, dispatcher,
		workflow.WithReducer(contact.Reducer{Policy: camp.GroupPolicy()}),
	)
}

// readTableFile loads a property or contact table from a CSV or XLSX file.
func readTableFile(path string) (*ingest.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ingest.ReadTableXLSX(data)
	}
	return ingest.ReadTable(data)
}

func writeFileAtomic(path string, write func(f *os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".outreach-*")
	if err != nil {
		return eris.Wrap(err, "create temp file")
	}
	defer os.Remove(f.Name())

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "close temp file")
	}
	return eris.Wrapf(os.Rename(f.Name(), path), "rename to %s", path)
}
