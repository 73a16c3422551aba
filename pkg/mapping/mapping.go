// Package mapping loads the table that pairs local script files with the
// destination paths they are embedded under in the answer file.
//
// The table is a comma separated file with a header naming the FileOrigin and
// FileDestination columns:
//
//	FileOrigin,FileDestination
//	scripts\Specialize.ps1,C:\Windows\Setup\Scripts\Specialize.ps1
//
// Files ending in .yaml or .yml are read as a list of origin/destination
// objects instead. Rows are returned in file order.
package mapping

import (
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/textfile"
)

// Row is one origin to destination pair.
type Row struct {
	Origin      string `csv:"FileOrigin" yaml:"origin"`
	Destination string `csv:"FileDestination" yaml:"destination"`

	// Line is the 1-based position of the row in its file: the CSV line the
	// record starts on, or the list index for YAML.
	Line int `csv:"-" yaml:"-"`
}

// Format of a mapping file.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
)

// DetectFormat picks a format from the file extension. Anything that is not
// YAML is read as CSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCSV
	}
}

// Load reads and validates the mapping table at path.
func Load(path string) ([]Row, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied input path
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("mapping", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	format := DetectFormat(path)
	rows, err := Parse(data, format)
	if err != nil {
		var pe *errors.ParseError
		if stderrors.As(err, &pe) && pe.File == "" {
			pe.File = path
		}
		return nil, err
	}
	return rows, nil
}

// Parse decodes a mapping table held in memory.
func Parse(data []byte, format Format) ([]Row, error) {
	var rows []Row

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, errors.NewParseError(string(format), "", err.Error(), err)
		}
		for i := range rows {
			rows[i].Line = i + 1
		}
	default:
		var err error
		if rows, err = parseCSV(data); err != nil {
			return nil, err
		}
	}

	if err := Validate(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// parseCSV decodes rows by header name. A header without both columns is an
// error, not a table of empty rows.
func parseCSV(data []byte) ([]Row, error) {
	reader := csv.NewReader(bytes.NewReader(textfile.StripBOM(data)))
	um, err := gocsv.NewUnmarshaller(reader, Row{})
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.NewParseError(string(FormatCSV), "", "no header row", err)
		}
		return nil, errors.NewParseError(string(FormatCSV), "", err.Error(), err)
	}
	if len(um.MismatchedStructFields) > 0 {
		return nil, errors.NewParseError(string(FormatCSV), "",
			"missing column "+strings.Join(um.MismatchedStructFields, ", "), nil)
	}

	var rows []Row
	for {
		record, err := um.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.NewParseError(string(FormatCSV), "", err.Error(), err)
		}
		row := record.(Row)
		row.Line, _ = reader.FieldPos(0)
		rows = append(rows, row)
	}
	return rows, nil
}

// Validate checks that every row names both an origin and a destination.
func Validate(rows []Row) error {
	for _, row := range rows {
		if strings.TrimSpace(row.Origin) == "" {
			return &errors.ValidationError{
				Field:   constants.OriginColumn,
				Value:   row.Line,
				Message: "empty origin in row " + strconv.Itoa(row.Line),
			}
		}
		if strings.TrimSpace(row.Destination) == "" {
			return &errors.ValidationError{
				Field:   constants.DestinationColumn,
				Value:   row.Line,
				Message: "empty destination in row " + strconv.Itoa(row.Line),
			}
		}
	}
	return nil
}

// Resolve rewrites origins for the local filesystem: Windows separators are
// converted where the OS does not use them, and relative origins are joined
// to dir when dir is set. Destinations are opaque and never touched.
func Resolve(rows []Row, dir string) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = row
		origin := row.Origin
		if os.PathSeparator == '/' {
			origin = strings.ReplaceAll(origin, `\`, "/")
		}
		if dir != "" && !filepath.IsAbs(origin) {
			origin = filepath.Join(dir, origin)
		}
		out[i].Origin = origin
	}
	return out
}
