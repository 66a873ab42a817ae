package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"docrag/internal/watcher"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Ingest files as they appear in a directory",
		Long: `Watches a directory and ingests every file created or written in it
once writes have settled. Hidden files, temporary files, subdirectories and
the knowledge base's own storage files are ignored. Rewriting a file ingests
it again as a new document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			return watchAndIngest(cmd.Context(), app, args[0], debounce, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a changed file is ingested")
	return cmd
}

// watchAndIngest blocks until ctx ends, ingesting every settled file in dir.
func watchAndIngest(ctx context.Context, app *App, dir string, debounce time.Duration, out io.Writer) error {
	var mu sync.Mutex
	w := watcher.New(debounce, app.Logger, watcher.WithIgnore(app.SnapshotFiles()...))
	return w.Run(ctx, dir, func(path string) {
		id, err := app.Service.IngestDocument(ctx, path, filepath.Base(path))
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", red("✗"), err)
			return
		}
		fmt.Fprintf(out, "%s %s %s\n", boldGreen("✓"), filepath.Base(path), faint(id))
	})
}
