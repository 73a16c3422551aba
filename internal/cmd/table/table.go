// Package table converts run results into rows for table output.
package table

import (
	"strconv"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/unattend/internal/cmd/emoji"
	"github.com/agentstation/unattend/pkg/provenance"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// RecordsToTableData converts provenance records to table format.
func RecordsToTableData(records []provenance.Record) Data {
	caser := cases.Title(language.English)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		symbol := emoji.Success
		detail := strconv.Itoa(rec.Bytes) + " bytes, " + rec.Encoding
		if rec.Status != provenance.StatusEmbedded {
			symbol = emoji.Warning
			detail = rec.Reason
		}
		rows = append(rows, []string{
			strconv.Itoa(rec.Line),
			symbol + " " + caser.String(string(rec.Status)),
			rec.Origin,
			rec.Destination,
			detail,
		})
	}

	return Data{
		Headers:         []string{"Line", "Status", "Origin", "Destination", "Detail"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
}
