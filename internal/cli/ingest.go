package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newIngestCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file|glob>...",
		Short: "Add text or PDF files to the knowledge base",
		Long: `Reads each file, extracts its text and stores it. Glob patterns are
expanded and directories are skipped. A file that fails does not stop the
others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			results := app.Service.IngestDocuments(cmd.Context(), args)
			failed := 0
			for _, r := range results {
				if r.OK() {
					fmt.Fprintf(out, "%s %s %s\n", boldGreen("✓"), r.Filename, faint(r.DocID))
					continue
				}
				failed++
				fmt.Fprintf(out, "%s %s: %v\n", red("✗"), r.Filename, r.Err)
			}
			fmt.Fprintf(out, "\n%d ingested, %d failed, %d documents total\n",
				len(results)-failed, failed, app.Service.DocumentCount())
			if len(results) == 0 {
				return fmt.Errorf("no files matched %v", args)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
}
