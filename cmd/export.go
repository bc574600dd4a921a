package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/internal/notify"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <session-id> <properties|contacts|ledger>",
	Short: "Export a session dataset to CSV",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

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

		write := func(f *os.File) error {
			switch args[1] {
			case "properties":
				return ingest.WritePropertiesCSV(f, sess.Properties)
			case "contacts":
				return ingest.WriteContactsCSV(f, sess.Scraped)
			case "ledger":
				rows, err := st.ListOutcomes(ctx, sess.ID)
				if err != nil {
					return err
				}
				return notify.WriteLedgerCSV(f, rows)
			default:
				return eris.Errorf("unknown dataset %q (want properties, contacts, or ledger)", args[1])
			}
		}

		if exportOut == "" {
			return write(os.Stdout)
		}
		if err := writeFileAtomic(exportOut, write); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s written to %s\n", args[1], exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
