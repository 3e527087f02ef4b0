package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cboone/snapwait/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// app carries the state shared by all subcommands once flags and config
// have been resolved.
type app struct {
	v      *viper.Viper
	cfg    config.Config
	logger *slog.Logger

	ok   *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

// NewRootCommand creates and returns the root cobra command for snapwait
func NewRootCommand() *cobra.Command {
	a := &app{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "snapwait",
		Short: "Review and resolve snapshot mismatch reports",
		Long: `snapwait inspects the reports written when a UI test times out waiting
for a screenshot to match its stored snapshot.

Reports can be listed, shown in detail, watched as tests run, and
accepted: the actual image either overwrites a stored variant or is
added as a new one.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (default .snapwait.yaml)")
	flags.String("report-dir", "", "directory holding reports (default .snapwait/reports)")
	flags.String("snapshot-dir", "", "snapshot directory accepted images must land in (default testdata/snapshots)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("color", config.ColorAuto, "colorize output: auto, always or never")

	_ = a.v.BindPFlag("report_dir", flags.Lookup("report-dir"))
	_ = a.v.BindPFlag("snapshot_dir", flags.Lookup("snapshot-dir"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = a.v.BindPFlag("color", flags.Lookup("color"))

	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newShowCommand(a))
	cmd.AddCommand(newAcceptCommand(a))
	cmd.AddCommand(newWatchCommand(a))

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if err := config.ReadFile(a.v, cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	enabled := colorEnabled(cfg.Color, cmd.OutOrStdout())
	a.ok = newColor(enabled, color.FgGreen)
	a.warn = newColor(enabled, color.FgYellow)
	a.bad = newColor(enabled, color.FgRed, color.Bold)
	a.dim = newColor(enabled, color.Faint)
	return nil
}

// colorEnabled resolves a color mode against the output writer.
func colorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
