package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"docrag/internal/domain"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Show matching chunks without asking the model",
		Long: `Ranks every chunk by the fraction of query words it contains.
No language model is involved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if !cmd.Flags().Changed("top-k") {
				topK = app.Service.DefaultTopK()
			}
			term := strings.Join(args, " ")
			results, err := app.Service.Search(term, topK)
			if err != nil {
				return err
			}
			if results == nil {
				results = []domain.SearchResult{}
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"query": strings.TrimSpace(term), "results": results, "count": len(results)})
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "[%d] %s (%.2f)\n", i+1, boldCyan(r.Source), r.Score)
				fmt.Fprintf(out, "    %s\n\n", snippet(r.Text, 200))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "maximum number of results (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

// snippet shortens s to at most n runes.
func snippet(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
