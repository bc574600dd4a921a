package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/store"
	"github.com/sells-group/outreach-cli/internal/workflow"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect and manage stored workflow sessions",
}

// -- session list --

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stage, _ := cmd.Flags().GetInt("stage")
		limit, _ := cmd.Flags().GetInt("limit")

		filter := store.SessionFilter{Limit: limit}
		if stage != 0 {
			s, err := workflow.ParseStage(stage)
			if err != nil {
				return err
			}
			filter.Stage = s
		}

		sessions, err := st.ListSessions(ctx, filter)
		if err != nil {
			return eris.Wrap(err, "session list")
		}

		if len(sessions) == 0 {
			fmt.Fprintln(os.Stderr, "No sessions found.")
			return nil
		}

		formatSessionList(os.Stdout, sessions)
		return nil
	},
}

func formatSessionList(w io.Writer, sessions []store.SessionSummary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTAGE\tCREATED\tUPDATED")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%d (%s)\t%s\t%s\n",
			s.ID, int(s.Stage), s.Stage,
			s.CreatedAt.Format("2006-01-02 15:04"),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	tw.Flush()
}

// -- session show --

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the full session payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "session show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	},
}

// -- session reset --

var sessionResetCmd = &cobra.Command{
	Use:   "reset <session-id>",
	Short: "Reset a session to the upload stage, clearing its datasets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		sess, err := st.GetSession(ctx, args[0])
		if err != nil {
			return err
		}
		sess.Reset()
		if err := st.SaveSession(ctx, sess); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "session %s reset\n", sess.ID)
		return nil
	},
}

// -- session delete --

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and its outcome ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := st.DeleteSession(ctx, args[0]); err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "session %s deleted\n", args[0])
		return nil
	},
}

func init() {
	sessionListCmd.Flags().Int("stage", 0, "filter by stage (1-5)")
	sessionListCmd.Flags().Int("limit", 50, "maximum sessions to list")
	sessionCmd.AddCommand(sessionListCmd, sessionShowCmd, sessionResetCmd, sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}
