// Package provenance records where every embedded file came from and marks
// generated documents as such.
package provenance

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/save"
)

// Status is the outcome of one mapping row.
type Status string

// Row outcomes.
const (
	StatusEmbedded Status = "embedded"
	StatusSkipped  Status = "skipped"
)

// Record describes one mapping row and what happened to it.
type Record struct {
	Line        int    `json:"line" yaml:"line"`
	Origin      string `json:"origin" yaml:"origin"`
	Destination string `json:"destination" yaml:"destination"`
	Status      Status `json:"status" yaml:"status"`
	Encoding    string `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Bytes       int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`
	SHA256      string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	Reason      string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Tracker collects records during a run.
type Tracker interface {
	// Track records the outcome of a row
	Track(record Record)

	// Records returns the records in the order they were tracked
	Records() []Record
}

// tracker is the default implementation.
type tracker struct {
	records []Record
	enabled bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records
// nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{enabled: enabled}
}

// Track records the outcome of a row.
func (p *tracker) Track(record Record) {
	if !p.enabled {
		return
	}
	p.records = append(p.records, record)
}

// Records returns a copy of the tracked records.
func (p *tracker) Records() []Record {
	if !p.enabled {
		return nil
	}
	return append([]Record{}, p.records...)
}

// Checksum returns the hex SHA-256 of content.
func Checksum(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// ValidateComment checks that text can be written as an XML comment.
func ValidateComment(text string) error {
	t := strings.TrimSpace(text)
	if t == "" {
		return &errors.ValidationError{Field: "comment", Message: "cannot be empty"}
	}
	if strings.Contains(t, "--") || strings.HasSuffix(t, "-") {
		return &errors.ValidationError{Field: "comment", Value: text, Message: `cannot contain "--" or end with "-"`}
	}
	return nil
}

// DefaultComment is the text of the comment that marks generated documents.
const DefaultComment = constants.ProvenanceComment

// Report is the provenance of one generated document.
type Report struct {
	Template    string    `yaml:"template"`
	Mapping     string    `yaml:"mapping"`
	Output      string    `yaml:"output,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at"`
	Records     []Record  `yaml:"records"`
}

// Embedded returns the number of rows that produced an entry.
func (r *Report) Embedded() int {
	return r.count(StatusEmbedded)
}

// Skipped returns the number of rows that were skipped.
func (r *Report) Skipped() int {
	return r.count(StatusSkipped)
}

func (r *Report) count(status Status) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Status == status {
			n++
		}
	}
	return n
}

// String generates a human-readable provenance report.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")
	fmt.Fprintf(&sb, "Template: %s\n", r.Template)
	fmt.Fprintf(&sb, "Mapping:  %s\n", r.Mapping)
	if r.Output != "" {
		fmt.Fprintf(&sb, "Output:   %s\n", r.Output)
	}
	sb.WriteString("\n")

	for _, rec := range r.Records {
		fmt.Fprintf(&sb, "%4d  %-8s  %s -> %s", rec.Line, rec.Status, rec.Origin, rec.Destination)
		switch rec.Status {
		case StatusEmbedded:
			fmt.Fprintf(&sb, " (%d bytes, %s)", rec.Bytes, rec.Encoding)
		case StatusSkipped:
			fmt.Fprintf(&sb, " (%s)", rec.Reason)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\n%d embedded, %d skipped\n", r.Embedded(), r.Skipped())
	return sb.String()
}

// File represents a provenance file stored on disk.
type File struct {
	Provenance *Report `yaml:"provenance"`
}

// Save writes the report to path, as Markdown when the path ends in .md and
// as YAML otherwise.
func Save(path string, report *Report) error {
	var buf bytes.Buffer
	if IsMarkdownPath(path) {
		if err := WriteMarkdown(&buf, report); err != nil {
			return errors.WrapIO("render", path, err)
		}
	} else {
		data, err := yaml.Marshal(&File{Provenance: report})
		if err != nil {
			return errors.WrapParse("yaml", path, err)
		}
		buf.Write(data)
	}
	return save.Write(&buf, save.WithPath(path))
}

// Load reads a provenance report from a YAML file.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path) //nolint:gosec // report path from CLI flags
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return pf.Provenance, nil
}
