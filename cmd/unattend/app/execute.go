package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/unattend/internal/cmd/emoji"
)

// Execute runs the unattend CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	if a.stdout != nil {
		rootCmd.SetOut(a.stdout)
	}
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
// The root command itself generates the answer file.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "unattend",
		Short:   "Embed provisioning scripts into a Windows answer file",
		Version: a.version,
		Long: `Unattend rebuilds the Extensions section of a Windows answer file from a
template and a mapping table.

Every row of the mapping names a local script (FileOrigin) and the path it is
extracted to during setup (FileDestination). Each script is embedded verbatim
as a File entry; rows whose script is missing are skipped with a warning.
Existing File entries in the template are replaced on every run.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setupCommand,
		RunE:              a.runGenerate,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is .unattend.yaml in the working or home directory)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Input and output flags
	flags.StringVarP(&a.config.TemplatePath, "template", "t", a.config.TemplatePath, "answer file template")
	flags.StringVarP(&a.config.MappingPath, "mapping", "m", a.config.MappingPath, "mapping table (.csv, .yaml or .yml)")
	flags.StringVar(&a.config.OutputPath, "output", a.config.OutputPath, "generated answer file")
	flags.StringVar(&a.config.ReportPath, "report", a.config.ReportPath, "write a provenance report (.yaml or .md)")
	flags.StringVar(&a.config.BaseDir, "base-dir", a.config.BaseDir, "directory relative script paths are resolved against")

	// Customize version output to match version subcommand
	rootCmd.SetVersionTemplate("unattend {{.Version}}\n")

	rootCmd.AddCommand(a.NewCheckCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// An explicit config file is read now; flags set on the command line
	// still take precedence over it.
	if cmd.Flags().Changed("config") {
		config, err := LoadConfig(a.config.ConfigFile)
		if err != nil {
			return err
		}
		config.MergeFlags(cmd.Flags(), a.config)
		a.config = config
	}

	// Reinitialize logger with updated config
	a.resetLogger()

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(emoji.Error + " " + err.Error() + "\n")
		os.Exit(1)
	}
}
