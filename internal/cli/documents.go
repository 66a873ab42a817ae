package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents in the knowledge base",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			docs := app.Service.ListMetadata()
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"total": len(docs), "documents": docs})
			}
			if len(docs) == 0 {
				fmt.Fprintln(out, "No documents.")
				return nil
			}
			for _, d := range docs {
				fmt.Fprintf(out, "%s  %s  %s\n", boldCyan(d.DocID), d.Filename,
					faint(fmt.Sprintf("%d chars, %d chunks", d.Size, d.Chunks)))
			}
			fmt.Fprintf(out, "\n%d documents\n", len(docs))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			doc, err := app.Service.Document(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", boldCyan(doc.Filename), faint(fmt.Sprintf("(%s, %d chars, %d chunks)", doc.ID, doc.Size, len(doc.Chunks))))
			fmt.Fprintln(out)
			fmt.Fprintln(out, doc.Content)
			return nil
		},
	}
}

func newDeleteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a document from the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Service.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %s deleted successfully\n", args[0])
			return nil
		},
	}
}
