package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCommand creates the 'snapwait watch' command
func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print reports as they are written",
		Long: `Watch the report directory and print a summary line for every report
written while tests run. The directory is created if it does not exist.
Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), cmd)
		},
	}
}

// watch prints each report document created or rewritten in the report
// directory until ctx is done.
func (a *app) watch(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	dir := a.cfg.ReportDir

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("watch: create %s: %w", dir, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	fmt.Fprintf(out, "Watching %s\n", dir)

	// A rewritten report gets a new ID, so each failure is printed once.
	seen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") || !strings.HasSuffix(event.Name, ".yaml") {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			doc, err := a.loadReport(event.Name)
			if err != nil || doc.ID == "" {
				// The document may still be partially written.
				a.logger.Debug("skip report", "path", event.Name, "error", err)
				continue
			}
			if seen[doc.ID] {
				continue
			}
			seen[doc.ID] = true
			fmt.Fprintln(out, a.summary(doc))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("watch error", "dir", filepath.Clean(dir), "error", err)
		}
	}
}
