package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newQueryCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "query <question>...",
		Short: "Answer a question from the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			q := strings.Join(args, " ")
			ans, err := app.Service.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"query":      strings.TrimSpace(q),
					"answer":     ans.Text,
					"sources":    ans.Sources,
					"confidence": ans.Confidence,
				})
			}
			fmt.Fprintln(out, ans.Text)
			if len(ans.Sources) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, boldCyan("Sources:"))
				for _, s := range ans.Sources {
					fmt.Fprintf(out, "  - %s\n", s)
				}
			}
			fmt.Fprintf(out, "%s\n", faint(fmt.Sprintf("confidence %.2f", ans.Confidence)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
