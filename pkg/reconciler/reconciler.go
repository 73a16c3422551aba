// Package reconciler rebuilds the embedded-file entries of an answer file
// from a mapping table. The entries container ends up holding exactly one
// entry per mapping row whose source exists, in row order, and the document
// is marked with a provenance comment.
package reconciler

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/beevik/etree"

	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/document"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/logging"
	"github.com/agentstation/unattend/pkg/mapping"
	"github.com/agentstation/unattend/pkg/provenance"
	"github.com/agentstation/unattend/pkg/textfile"
)

// Reconciler rebuilds the entries container of a document.
type Reconciler interface {
	// Run locates the anchors, replaces every entry with one per row and
	// annotates the document. The document is modified in place.
	Run(ctx context.Context, doc *document.Document, rows []mapping.Row) (*Result, error)

	// Anchors locates the root element and the entries container.
	Anchors(doc *document.Document) (*Anchors, error)

	// ClearEntries removes every entry element from the container and
	// returns how many were removed.
	ClearEntries(container *etree.Element) int

	// AddEntry appends an entry for row, or skips the row when its source
	// file does not exist.
	AddEntry(ctx context.Context, container *etree.Element, row mapping.Row) (Outcome, error)

	// Annotate inserts the provenance comment as the first node under the
	// root, replacing an earlier copy.
	Annotate(doc *document.Document)
}

// Anchors are the nodes a run edits.
type Anchors struct {
	Root      *etree.Element
	Container *etree.Element
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	opts *options
}

// New creates a new Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &reconciler{opts: options}, nil
}

// Run performs the reconciliation step by step.
func (r *reconciler) Run(ctx context.Context, doc *document.Document, rows []mapping.Row) (*Result, error) {
	logger := logging.FromContext(ctx)
	result := NewResult()
	result.Metadata.DryRun = r.opts.dryRun
	tracker := provenance.NewTracker(r.opts.tracking)

	// Step 1: Locate anchors before touching the tree
	anchors, err := r.Anchors(doc)
	if err != nil {
		return nil, err
	}

	// Step 2: Drop stale entries
	result.Metadata.Stats.EntriesRemoved = r.ClearEntries(anchors.Container)
	logger.Debug().
		Int("removed", result.Metadata.Stats.EntriesRemoved).
		Msg("Cleared stale entries")

	// Step 3: One entry per row, in row order
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("reconcile", err)
		}

		rowCtx := logging.WithRow(ctx, row.Line, row.Origin, row.Destination)
		outcome, err := r.AddEntry(rowCtx, anchors.Container, row)
		if err != nil {
			return nil, err
		}

		result.Outcomes = append(result.Outcomes, outcome)
		tracker.Track(outcome.Record())
		result.Metadata.Stats.RowsProcessed++
		if outcome.Embedded() {
			result.Metadata.Stats.EntriesAdded++
			result.Metadata.Stats.BytesEmbedded += outcome.Text.Size
		} else {
			result.Metadata.Stats.RowsSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("source file %s not found, skipping %s", row.Origin, row.Destination))
		}
	}

	// Step 4: Lay out the container and mark the document
	document.Reindent(anchors.Container, r.opts.indent)
	r.Annotate(doc)

	result.Provenance = tracker.Records()
	result.Finalize()

	logger.Info().
		Int("embedded", result.Metadata.Stats.EntriesAdded).
		Int("skipped", result.Metadata.Stats.RowsSkipped).
		Int("removed", result.Metadata.Stats.EntriesRemoved).
		Bool("dry_run", result.Metadata.DryRun).
		Msg("Reconciled entries")

	return result, nil
}

// Anchors locates the root element and the entries container.
func (r *reconciler) Anchors(doc *document.Document) (*Anchors, error) {
	namespace := r.opts.namespace
	if namespace == "" {
		namespace = doc.DefaultNamespace()
	}
	doc.RegisterNamespace(constants.NamespacePrefix, namespace)

	root, err := r.locate(doc, r.opts.rootElement, "/"+constants.NamespacePrefix+":"+r.opts.rootElement)
	if err != nil {
		return nil, err
	}
	container, err := r.locate(doc, r.opts.container, "//"+constants.NamespacePrefix+":"+r.opts.container)
	if err != nil {
		return nil, err
	}
	return &Anchors{Root: root, Container: container}, nil
}

// locate requires query to match exactly one element.
func (r *reconciler) locate(doc *document.Document, anchor, query string) (*etree.Element, error) {
	matches, err := doc.FindAll(query)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, errors.NewAnchorError(anchor, query, doc.Path(), len(matches))
	}
	return matches[0], nil
}

// ClearEntries removes every entry element in the container's namespace.
func (r *reconciler) ClearEntries(container *etree.Element) int {
	space := container.NamespaceURI()
	return document.RemoveChildElements(container, func(e *etree.Element) bool {
		return e.Tag == r.opts.entryElement && e.NamespaceURI() == space
	})
}

// AddEntry appends an entry for row.
func (r *reconciler) AddEntry(ctx context.Context, container *etree.Element, row mapping.Row) (Outcome, error) {
	logger := logging.FromContext(ctx)

	if _, err := os.Stat(row.Origin); err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			return Outcome{}, errors.WrapIO("stat", row.Origin, err)
		}
		logger.Warn().Msg("Source file not found, skipping entry")
		return Outcome{Row: row, Status: provenance.StatusSkipped, Reason: "source file not found"}, nil
	}

	text, err := textfile.Read(row.Origin)
	if err != nil {
		return Outcome{}, err
	}

	entry := container.CreateElement(r.opts.entryElement)
	entry.Space = container.Space
	entry.CreateAttr(r.opts.pathAttr, row.Destination)
	document.SetLiteralText(entry, text.Content)

	logger.Debug().
		Int("bytes", text.Size).
		Str("encoding", string(text.Encoding)).
		Msg("Embedded source file")

	return Outcome{Row: row, Status: provenance.StatusEmbedded, Text: text}, nil
}

// Annotate inserts the provenance comment under the root.
func (r *reconciler) Annotate(doc *document.Document) {
	root := doc.Root()
	document.RemoveComments(root, r.opts.comment)
	document.PrependComment(root, r.opts.comment)
}
