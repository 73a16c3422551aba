package reconciler

import (
	"fmt"
	"time"

	"github.com/agentstation/unattend/pkg/mapping"
	"github.com/agentstation/unattend/pkg/provenance"
	"github.com/agentstation/unattend/pkg/textfile"
)

// Outcome is what happened to one mapping row.
type Outcome struct {
	Row    mapping.Row
	Status provenance.Status
	Reason string         // set when the row was skipped
	Text   *textfile.Text // set when the row was embedded
}

// Embedded reports whether the row produced an entry.
func (o Outcome) Embedded() bool {
	return o.Status == provenance.StatusEmbedded
}

// Record converts the outcome into a provenance record.
func (o Outcome) Record() provenance.Record {
	rec := provenance.Record{
		Line:        o.Row.Line,
		Origin:      o.Row.Origin,
		Destination: o.Row.Destination,
		Status:      o.Status,
		Reason:      o.Reason,
	}
	if o.Text != nil {
		rec.Encoding = string(o.Text.Encoding)
		rec.Bytes = o.Text.Size
		rec.SHA256 = provenance.Checksum(o.Text.Content)
	}
	return rec
}

// Result represents the outcome of a reconciliation operation.
type Result struct {
	// Per-row outcomes in mapping order
	Outcomes []Outcome

	// Metadata
	Metadata ResultMetadata

	// Provenance records, empty when tracking is disabled
	Provenance []provenance.Record

	// One message per skipped row
	Warnings []string
}

// ResultMetadata contains metadata about the reconciliation process.
type ResultMetadata struct {
	// StartTime when reconciliation started
	StartTime time.Time

	// EndTime when reconciliation completed
	EndTime time.Time

	// Duration of the reconciliation
	Duration time.Duration

	// DryRun indicates if this was a dry-run
	DryRun bool

	// Statistics about the reconciliation
	Stats ResultStatistics
}

// ResultStatistics contains statistics about the reconciliation.
type ResultStatistics struct {
	RowsProcessed  int
	EntriesAdded   int
	EntriesRemoved int
	RowsSkipped    int
	BytesEmbedded  int
	TotalTimeMs    int64
}

// Embedded returns the outcomes that produced an entry.
func (r *Result) Embedded() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Embedded() {
			out = append(out, o)
		}
	}
	return out
}

// Skipped returns the outcomes of rows whose source was missing.
func (r *Result) Skipped() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.Embedded() {
			out = append(out, o)
		}
	}
	return out
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	if r.Metadata.DryRun {
		return fmt.Sprintf("Dry run completed. %d entries would be embedded, %d skipped.", s.EntriesAdded, s.RowsSkipped)
	}
	return fmt.Sprintf("Reconciliation completed. %d entries embedded, %d skipped, %d stale entries removed.",
		s.EntriesAdded, s.RowsSkipped, s.EntriesRemoved)
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Outcomes: []Outcome{},
		Warnings: []string{},
		Metadata: ResultMetadata{
			StartTime: time.Now(),
		},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
	r.Metadata.Stats.TotalTimeMs = r.Metadata.Duration.Milliseconds()
}
