package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/notify"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

var (
	notifyContacts string
	notifySession  string
	notifyOut      string
	notifyCampaign string
	notifyMode     string
	notifyGroupBy  string
	notifyRate     float64
	notifyDryRun   bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Dispatch notifications for a contact list or session",
	Long:  "Reduces contacts to the first phone and email per owner, sends each through the marketing service, and writes the outcome report.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("notify"); err != nil {
			return err
		}
		if notifyContacts == "" && notifySession == "" {
			return fmt.Errorf("one of --contacts or --session is required")
		}

		camp, err := resolveCampaign(notifyCampaign, notifyMode, notifyGroupBy, notifyRate)
		if err != nil {
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

		sender := initMarketing()
		if notifyDryRun {
			sender = dryRunClient{}
		}
		ctrl := newController(nil, newDispatcher(sender, camp), camp)

		var sess *workflow.Session
		if notifySession != "" {
			sess, err = st.GetSession(ctx, notifySession)
			if err != nil {
				return err
			}
		} else {
			sess = workflow.NewSession()

			data, err := os.ReadFile(notifyContacts)
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
		}

		printNotices(ctrl.ReduceContacts(sess))
		sess.Jump(workflow.StageNotify)

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

		if err := writeFileAtomic(notifyOut, func(f *os.File) error {
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
		zap.L().Info("notify complete",
			zap.String("session", sess.ID),
			zap.Int("sent", sent),
			zap.Int("failed", failed),
		)
		fmt.Fprintf(os.Stdout, "session %s: %d sent, %d failed, report written to %s\n", sess.ID, sent, failed, notifyOut)
		return nil
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifyContacts, "contacts", "", "contact list CSV")
	notifyCmd.Flags().StringVar(&notifySession, "session", "", "dispatch an existing session's selected contacts")
	notifyCmd.Flags().StringVar(&notifyOut, "out", "notification_report.csv", "outcome report path")
	notifyCmd.Flags().StringVar(&notifyCampaign, "campaign", "", "campaign YAML file")
	notifyCmd.Flags().StringVar(&notifyMode, "mode", "", "dispatch mode: per_record or per_owner")
	notifyCmd.Flags().StringVar(&notifyGroupBy, "group-by", "", "owner grouping: id_name or id")
	notifyCmd.Flags().Float64Var(&notifyRate, "rate", 0, "max sends per second (0 = unlimited)")
	notifyCmd.Flags().BoolVar(&notifyDryRun, "dry-run", false, "log payloads without calling the marketing service")
	rootCmd.AddCommand(notifyCmd)
}
