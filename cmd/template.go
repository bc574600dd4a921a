package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/ingest"
)

var templateOut string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an example contact list CSV",
	Long:  "Writes a contact CSV with the columns the manual upload path expects, populated with example rows.",
	RunE: func(_ *cobra.Command, _ []string) error {
		if templateOut == "" {
			return ingest.WriteContactTemplate(os.Stdout)
		}
		if err := writeFileAtomic(templateOut, func(f *os.File) error {
			return ingest.WriteContactTemplate(f)
		}); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "template written to %s\n", templateOut)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateOut, "out", "", "output path (default stdout)")
	rootCmd.AddCommand(templateCmd)
}
