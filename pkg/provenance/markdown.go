package provenance

import (
	"io"
	"path/filepath"
	"strconv"
	"strings"

	md "github.com/nao1215/markdown"
)

// IsMarkdownPath reports whether a report written to path should be Markdown.
func IsMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// WriteMarkdown renders the report as a Markdown document.
func WriteMarkdown(w io.Writer, r *Report) error {
	doc := md.NewMarkdown(w)

	doc.H1("Provenance Report").LF()
	doc.BulletList(
		"Template: "+md.Code(r.Template),
		"Mapping: "+md.Code(r.Mapping),
		"Output: "+md.Code(r.Output),
		"Generated: "+r.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
	).LF()

	rows := make([][]string, 0, len(r.Records))
	for _, rec := range r.Records {
		detail := rec.Reason
		if rec.Status == StatusEmbedded {
			detail = strconv.Itoa(rec.Bytes) + " bytes, " + rec.Encoding
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Line),
			string(rec.Status),
			md.Code(rec.Origin),
			md.Code(rec.Destination),
			detail,
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Line", "Status", "Origin", "Destination", "Detail"},
		Rows:   rows,
	}).LF()

	doc.PlainTextf("%d embedded, %d skipped", r.Embedded(), r.Skipped())

	return doc.Build()
}
