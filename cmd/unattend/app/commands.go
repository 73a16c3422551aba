package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/unattend"
	"github.com/agentstation/unattend/internal/cmd/emoji"
	"github.com/agentstation/unattend/internal/cmd/output"
	"github.com/agentstation/unattend/internal/cmd/table"
	"github.com/agentstation/unattend/pkg/logging"
	"github.com/agentstation/unattend/pkg/provenance"
	"github.com/agentstation/unattend/pkg/reconciler"
)

// runGenerate writes the answer file.
func (a *App) runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := logging.WithLogger(cmd.Context(), a.logger)

	result, err := unattend.Reconcile(ctx, a.config.Unattend(), a.config.ReconcilerOptions()...)
	if err != nil {
		return err
	}

	stats := result.Metadata.Stats
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s (%d embedded, %d skipped)\n",
		emoji.Success, a.config.OutputPath, stats.EntriesAdded, stats.RowsSkipped)
	if a.config.ReportPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Provenance report %s\n", emoji.Info, a.config.ReportPath)
	}
	return nil
}

// NewCheckCommand creates the check command.
func (a *App) NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate inputs and show what would be embedded",
		Long: `Check loads the template and the mapping, locates the Extensions section and
reads every script exactly like a normal run, then prints one line per mapping
row. Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: a.runCheck,
	}
	cmd.Flags().StringVarP(&a.config.Format, "format", "f", a.config.Format, "output format: table, json, yaml")
	return cmd
}

func (a *App) runCheck(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	format = output.DetectFormat(string(format))

	ctx := logging.WithLogger(cmd.Context(), a.logger)
	result, err := unattend.Check(ctx, a.config.Unattend(), a.config.ReconcilerOptions()...)
	if err != nil {
		return err
	}

	records := outcomeRecords(result)
	var data any = records
	if format == output.FormatTable {
		data = table.RecordsToTableData(records)
	}
	if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), data); err != nil {
		return err
	}

	if format == output.FormatTable {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", emoji.Info, result.Summary())
	}
	return nil
}

func outcomeRecords(result *reconciler.Result) []provenance.Record {
	records := make([]provenance.Record, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		records = append(records, o.Record())
	}
	return records
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "unattend version %s\n", a.version)
			fmt.Fprintf(out, "commit: %s\n", a.commit)
			fmt.Fprintf(out, "built: %s\n", a.date)
			fmt.Fprintf(out, "built by: %s\n", a.builtBy)
			fmt.Fprintf(out, "go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
