// Package unattend merges provisioning scripts into a Windows answer file.
//
// A run reads a template answer file and a mapping table, rebuilds the
// Extensions container so it holds one embedded File entry per mapping row,
// marks the document with a provenance comment and writes it:
//
//	result, err := unattend.Reconcile(ctx, unattend.DefaultConfig())
//
// Rows whose source file is missing are skipped with a warning. Every other
// problem is returned as an error before anything is written.
package unattend

import (
	"context"
	"time"

	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/document"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/logging"
	"github.com/agentstation/unattend/pkg/mapping"
	"github.com/agentstation/unattend/pkg/provenance"
	"github.com/agentstation/unattend/pkg/reconciler"
	"github.com/agentstation/unattend/pkg/save"
)

// Config names the files a run reads and writes.
type Config struct {
	// TemplatePath is the answer file template.
	TemplatePath string

	// MappingPath is the origin to destination table.
	MappingPath string

	// OutputPath is the generated answer file. It is overwritten.
	OutputPath string

	// BaseDir resolves relative origins. Empty means the working directory.
	BaseDir string

	// ReportPath optionally receives a provenance report.
	ReportPath string
}

// DefaultConfig returns the conventional file names in the working directory.
func DefaultConfig() Config {
	return Config{
		TemplatePath: constants.DefaultTemplatePath,
		MappingPath:  constants.DefaultMappingPath,
		OutputPath:   constants.DefaultOutputPath,
	}
}

// Validate checks that the required paths are set.
func (c Config) Validate() error {
	switch {
	case c.TemplatePath == "":
		return errors.NewValidationError("template", c.TemplatePath, "path is required")
	case c.MappingPath == "":
		return errors.NewValidationError("mapping", c.MappingPath, "path is required")
	case c.OutputPath == "":
		return errors.NewValidationError("output", c.OutputPath, "path is required")
	}
	return nil
}

// Reconcile generates the answer file described by cfg.
func Reconcile(ctx context.Context, cfg Config, opts ...reconciler.Option) (*reconciler.Result, error) {
	return run(logging.WithOperation(ctx, "reconcile"), cfg, opts...)
}

// Check performs every step of Reconcile except writing files.
func Check(ctx context.Context, cfg Config, opts ...reconciler.Option) (*reconciler.Result, error) {
	ctx = logging.WithOperation(ctx, "check")
	return run(ctx, cfg, append(opts, reconciler.WithDryRun(true))...)
}

func run(ctx context.Context, cfg Config, opts ...reconciler.Option) (*reconciler.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx = logging.WithTemplate(ctx, cfg.TemplatePath)
	ctx = logging.WithMapping(ctx, cfg.MappingPath)
	logger := logging.FromContext(ctx)

	r, err := reconciler.New(opts...)
	if err != nil {
		return nil, err
	}

	doc, err := document.Load(cfg.TemplatePath)
	if err != nil {
		return nil, err
	}

	rows, err := mapping.Load(cfg.MappingPath)
	if err != nil {
		return nil, err
	}
	rows = mapping.Resolve(rows, cfg.BaseDir)
	logger.Debug().Int("rows", len(rows)).Msg("Loaded mapping")

	result, err := r.Run(ctx, doc, rows)
	if err != nil {
		return nil, err
	}

	if result.Metadata.DryRun {
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("save", err)
	}
	if err := save.Write(doc, save.WithPath(cfg.OutputPath)); err != nil {
		return nil, err
	}
	logger.Info().Str("output", cfg.OutputPath).Msg("Wrote answer file")

	if cfg.ReportPath != "" {
		report := &provenance.Report{
			Template:    cfg.TemplatePath,
			Mapping:     cfg.MappingPath,
			Output:      cfg.OutputPath,
			GeneratedAt: time.Now().UTC(),
			Records:     result.Provenance,
		}
		if err := provenance.Save(cfg.ReportPath, report); err != nil {
			return nil, err
		}
		logger.Debug().Str("report", cfg.ReportPath).Msg("Wrote provenance report")
	}

	return result, nil
}
