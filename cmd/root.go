package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"testament/internal/config"
	"testament/internal/git"
	"testament/internal/observability"
	"testament/internal/ui"
	"testament/pkg/models"
)

// app carries the state shared by the commands of one invocation
type app struct {
	v        *viper.Viper
	settings *models.Settings
	logger   *observability.Logger
	metrics  *observability.MetricsRegistry
}

// NewRootCmd builds the command tree with a fresh configuration instance
func NewRootCmd() *cobra.Command {
	a := &app{
		v:       config.New(),
		logger:  observability.NewNopLogger(),
		metrics: observability.NewMetricsRegistry("testament"),
	}

	rootCmd := &cobra.Command{
		Use:   "testament",
		Short: "Describe the source state of a build",
		Long: `testament records which commit a program was built from: the nearest tag,
how far HEAD is past it, and whether the working tree was modified.

Outside a repository the date from SOURCE_DATE_EPOCH, or today, is used.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.reportMetrics,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("path", ".", "directory inside the working tree to describe")
	flags.Bool("include-untracked", false, "count untracked files as modifications")
	flags.String("package-version", "", "version the package declares, compared with the tag")
	flags.String("trusted-branch", "", "branch whose clean tagged builds show the package version alone")
	flags.String("source-date-epoch", "", "seconds since the epoch to date builds outside a repository")
	flags.String("color", models.ColorAuto, "colorize output: auto, always or never")
	flags.String("log-level", "warn", "diagnostic log level: debug, info, warn or error")
	bindFlags(a.v, flags, map[string]string{
		"path":              "path",
		"include_untracked": "include-untracked",
		"package_version":   "package-version",
		"trusted_branch":    "trusted-branch",
		"source_date_epoch": "source-date-epoch",
		"color":             "color",
		"log_level":         "log-level",
	})

	rootCmd.AddCommand(newRenderCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

// setup loads settings once the command line is parsed. A positional
// argument overrides the path setting.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		a.v.Set("path", args[0])
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	a.logger = observability.NewLogger(observability.LoggerConfig{
		Level:   observability.LogLevelFromString(settings.LogLevel),
		Output:  cmd.ErrOrStderr(),
		Service: "testament",
		Version: Version,
		Encoder: observability.TextEncoder{},
	})
	observability.SetDefaultLogger(a.logger)

	ui.SetColorMode(settings.Color, cmd.OutOrStdout())
	if raw := settings.SourceDateEpoch; raw != "" {
		if _, ok := config.ParseEpoch(raw); !ok {
			ui.ShowWarning(cmd.ErrOrStderr(), fmt.Sprintf("%s %q is not a count of seconds; builds outside a repository use the current time", config.SourceDateEpochEnv, raw))
		}
	}
	a.logger.DebugWithFields("settings loaded", map[string]interface{}{
		"path":        settings.Path,
		"config_file": a.v.ConfigFileUsed(),
	})
	return nil
}

// reportMetrics logs the resolver counters and, at debug level, writes the
// full metric dump to stderr.
func (a *app) reportMetrics(cmd *cobra.Command, _ []string) {
	a.logger.DebugWithFields("resolve metrics", a.metrics.Snapshot())
	if a.logger.Enabled(observability.DebugLevel) {
		fmt.Fprint(cmd.ErrOrStderr(), a.metrics.Export())
	}
}

func (a *app) resolver() *git.Resolver {
	return git.NewResolver(
		git.WithIncludeUntracked(a.settings.IncludeUntracked),
		git.WithFallbackTime(config.FallbackClock(a.settings)),
		git.WithLogger(a.logger),
		git.WithMetrics(a.metrics),
	)
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
