package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
	"github.com/sells-group/outreach-cli/pkg/screenscraper"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Manage screen-scraper jobs for a session",
	Long:  "Commands for submitting a session's property list to the contact scraper, checking job progress, and loading results back into the session.",
}

// -- scrape submit --

var scrapeSubmitCmd = &cobra.Command{
	Use:   "submit <session-id>",
	Short: "Submit a session's property list as a scrape job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}

		ctrl := newControllerForScrape()
		notices, err := ctrl.SubmitScrape(ctx, sess)
		printNotices(notices)
		if err != nil {
			return err
		}
		if err := st.SaveSession(ctx, sess); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "job %s submitted (%s)\n", sess.Job.JobID, sess.Job.Status)
		return nil
	},
}

// -- scrape status --

var scrapeStatusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Check the session's scrape job status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}

		ctrl := newControllerForScrape()
		if err := ctrl.PollScrape(ctx, sess); err != nil {
			return err
		}
		if err := st.SaveSession(ctx, sess); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess.Job)
	},
}

// -- scrape watch --

var scrapeWatchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Wait for the scrape job and load its results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}
		if sess.Job == nil {
			return eris.Errorf("session %s has no scrape job", sess.ID)
		}

		scraper := initScraper()
		status, err := screenscraper.Poll(ctx, scraper, sess.Job.JobID,
			screenscraper.WithPollInterval(time.Duration(cfg.Scraper.PollIntervalSecs)*time.Second),
			screenscraper.WithPollTimeout(time.Duration(cfg.Scraper.PollTimeoutSecs)*time.Second),
		)
		if err != nil {
			return eris.Wrap(err, "wait for scrape job")
		}
		sess.Job.Status = status.Status
		sess.Job.Message = status.Message

		return fetchIntoSession(cmd, st, sess)
	},
}

// -- scrape fetch --

var scrapeFetchCmd = &cobra.Command{
	Use:   "fetch <session-id>",
	Short: "Download completed scrape results into the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("scrape"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}

		return fetchIntoSession(cmd, st, sess)
	},
}

func newControllerForScrape() *workflow.Controller {
	return workflow.NewController(initScraper(), nil)
}

func fetchIntoSession(cmd *cobra.Command, st store.Store, sess *workflow.Session) error {
	ctx := cmd.Context()

	ctrl := newControllerForScrape()
	notices, err := ctrl.FetchScrape(ctx, sess)
	printNotices(notices)
	if err != nil {
		return err
	}
	if sess.Stage < workflow.StageSelect {
		sess.Jump(workflow.StageSelect)
	}
	if err := st.SaveSession(ctx, sess); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "%d contacts loaded into session %s\n", len(sess.Scraped), sess.ID)

	out, _ := cmd.Flags().GetString("out")
	if out != "" {
		if err := writeFileAtomic(out, func(f *os.File) error {
			return ingest.WriteContactsCSV(f, sess.Scraped)
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "contacts written to %s\n", out)
	}
	return nil
}

func init() {
	scrapeWatchCmd.Flags().String("out", "", "also write scraped contacts to this CSV file")
	scrapeFetchCmd.Flags().String("out", "", "also write scraped contacts to this CSV file")
	scrapeCmd.AddCommand(scrapeSubmitCmd, scrapeStatusCmd, scrapeWatchCmd, scrapeFetchCmd)
	rootCmd.AddCommand(scrapeCmd)
}
