package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/internal/workflow"
	"github.com/sells-group/outreach-cli/pkg/screenscraper"
)

var (
	runInput    string
	runContacts string
	runSample   bool
	runOut      string
	runCampaign string
	runMode     string
	runGroupBy  string
	runRate     float64
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full outreach workflow for a delinquency list",
	Long:  "Uploads a property list, scrapes owner contacts, selects the first phone and email per owner, dispatches notifications, and writes the outcome report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("run"); err != nil {
			return err
		}
		if runInput == "" && runContacts == "" && !runSample {
			return fmt.Errorf("one of --input, --contacts, or --sample is required")
		}

		camp, err := resolveCampaign(runCampaign, runMode, runGroupBy, runRate)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sender := initMarketing()
		if runDryRun {
			sender = dryRunClient{}
		}
		scraper := initScraper()
		ctrl := newController(scraper, newDispatcher(sender, camp), camp)

		sess := workflow.NewSession()

		switch {
		case runContacts != "":
			// Skip the scrape stages: load a prepared contact list.
			data, err := os.ReadFile(runContacts)
			if err != nil {
				return err
			}
			raw, err := ingest.ParseContacts(data)
			if err != nil {
				return err
			}
			notices, err := ctrl.LoadContacts(sess, raw)
			printNotices(notices)
			if err != nil {
				return err
			}
			sess.Jump(workflow.StageSelect)

		case runSample:
			// No input at all: the select stage synthesizes the sample data.
			printNotices(sess.Jump(workflow.StageSelect))

		default:
			// Stage 1: upload
			table, err := readTableFile(runInput)
			if err != nil {
				return err
			}
			records, warnings, err := ingest.ParseProperties(table)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				zap.L().Warn("property ingest", zap.String("warning", w))
			}
			ctrl.UploadProperties(sess, records, "")
			sess.Jump(workflow.StageReview)

			// Stage 2: review summary
			fmt.Fprintln(os.Stdout, ingest.Summarize(records))

			// Stage 3: scrape
			sess.Advance()
			notices, err := ctrl.SubmitScrape(ctx, sess)
			printNotices(notices)
			if err != nil {
				return err
			}
			if err := st.SaveSession(ctx, sess); err != nil {
				return err
			}

			status, err := screenscraper.Poll(ctx, scraper, sess.Job.JobID,
				screenscraper.WithPollInterval(time.Duration(cfg.Scraper.PollIntervalSecs)*time.Second),
				screenscraper.WithPollTimeout(time.Duration(cfg.Scraper.PollTimeoutSecs)*time.Second),
			)
			if err != nil {
				return eris.Wrap(err, "wait for scrape job")
			}
			sess.Job.Status = status.Status
			sess.Job.Message = status.Message

			notices, err = ctrl.FetchScrape(ctx, sess)
			printNotices(notices)
			if err != nil {
				return err
			}
			sess.Advance()
			printNotices(ctrl.ApplySelection(sess, sess.Scraped))
		}

		// Stage 4: select
		printNotices(ctrl.ReduceContacts(sess))

		// Stage 5: notify
		sess.Advance()
		batch, notices, err := ctrl.Dispatch(ctx, sess)
		printNotices(notices)
		if err != nil {
			return err
		}

		if err := st.SaveSession(ctx, sess); err != nil {
			return err
		}
		if err := st.AppendOutcomes(ctx, sess.ID, batch); err != nil {
			return err
		}

		if err := writeFileAtomic(runOut, func(f *os.File) error {
			return notify.WriteLedgerCSV(f, batch)
		}); err != nil {
			return err
		}

		sent, failed := 0, 0
		for _, o := range batch {
			if o.Status == model.SendStatusSent {
				sent++
			} else {
				failed++
			}
		}
		fmt.Fprintf(os.Stdout, "session %s: %d sent, %d failed, report written to %s\n", sess.ID, sent, failed, runOut)
		return nil
	},
}

func printNotices(notices []workflow.Notice) {
	for _, n := range notices {
		fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
	}
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "delinquency list (CSV or XLSX)")
	runCmd.Flags().StringVar(&runContacts, "contacts", "", "skip scraping and load this contact CSV")
	runCmd.Flags().BoolVar(&runSample, "sample", false, "run against the built-in sample data")
	runCmd.Flags().StringVar(&runOut, "out", "notification_report.csv", "outcome report path")
	runCmd.Flags().StringVar(&runCampaign, "campaign", "", "campaign YAML file")
	runCmd.Flags().StringVar(&runMode, "mode", "", "dispatch mode: per_record or per_owner")
	runCmd.Flags().StringVar(&runGroupBy, "group-by", "", "owner grouping: id_name or id")
	runCmd.Flags().Float64Var(&runRate, "rate", 0, "max sends per second (0 = unlimited)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log payloads without calling the marketing service")
	rootCmd.AddCommand(runCmd)
}
