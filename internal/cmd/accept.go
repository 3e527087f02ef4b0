package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cboone/snapwait/internal/report"
)

// newAcceptCommand creates the 'snapwait accept' command
func newAcceptCommand(a *app) *cobra.Command {
	var (
		candidate   int
		alternative bool
	)

	cmd := &cobra.Command{
		Use:   "accept <report>",
		Short: "Accept the actual image of a report into the snapshot store",
		Long: `Copy the actual image of a report into the snapshot store.

By default the stored variant of the chosen candidate is overwritten.
With --alternative the image is added as a new variant instead; an
existing file is never replaced in that mode.

The target must lie in the snapshot directory. A relative
--snapshot-dir names the directory inside each test package, the way
tests resolve it; an absolute one names a single root.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadReport(args[0])
			if err != nil {
				return err
			}

			action := report.Overwrite
			if alternative {
				action = report.AddAlternative
			}
			target, err := doc.Target(candidate, action)
			if err != nil {
				return err
			}
			if !withinSnapshotDir(target, a.cfg.SnapshotDir) {
				return fmt.Errorf("accept: %s is outside the snapshot directory %s", target, a.cfg.SnapshotDir)
			}

			path, err := doc.Resolve(candidate, action)
			if err != nil {
				return err
			}

			a.logger.Info("accepted snapshot", "report", doc.Path(), "action", string(action), "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.ok.Sprintf("%s:", action), path)
			return nil
		},
	}

	cmd.Flags().IntVarP(&candidate, "candidate", "c", 0, "index of the candidate to resolve")
	cmd.Flags().BoolVar(&alternative, "alternative", false, "add the actual image as a new variant")

	return cmd
}

// withinSnapshotDir reports whether target lies under the snapshot
// directory dir. A relative dir matches at any depth of target.
func withinSnapshotDir(target, dir string) bool {
	target = filepath.Clean(target)
	dir = filepath.Clean(dir)

	if filepath.IsAbs(dir) {
		rel, err := filepath.Rel(dir, target)
		return err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
	}
	sep := string(filepath.Separator)
	return strings.Contains(target, sep+dir+sep)
}
