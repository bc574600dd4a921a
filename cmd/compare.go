package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/ingest"
	"github.com/sells-group/outreach-cli/pkg/compare"
)

var compareOut string

var compareCmd = &cobra.Command{
	Use:   "compare <previous.csv> <current.csv>",
	Short: "Find properties new in the current delinquency list",
	Long:  "Sends both lists to the comparison service and reports the rows present in the current list but not the previous one.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		prev, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		curr, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		client := compare.NewClient(compare.WithBaseURL(cfg.Compare.BaseURL))
		result, err := client.CheckNewRows(ctx, args[0], prev, args[1], curr)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "%d new properties\n", result.Count)

		if compareOut != "" && len(result.JSON) > 0 {
			if err := writeFileAtomic(compareOut, func(f *os.File) error {
				return ingest.WritePropertiesCSV(f, result.JSON)
			}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "new rows written to %s\n", compareOut)
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareOut, "out", "", "write new rows to this CSV file")
	rootCmd.AddCommand(compareCmd)
}
