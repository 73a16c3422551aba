package mapping_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/mapping"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file_mapping.csv",
		"FileOrigin,FileDestination\n"+
			"a.ps1,C:\\Setup\\a.ps1\n"+
			"b.ps1,C:\\Setup\\b.ps1\n"+
			"\"c d.ps1\",\"C:\\Setup\\c d.ps1\"\n")

	rows, err := mapping.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, mapping.Row{Origin: "a.ps1", Destination: `C:\Setup\a.ps1`, Line: 2}, rows[0])
	assert.Equal(t, "b.ps1", rows[1].Origin)
	assert.Equal(t, "c d.ps1", rows[2].Origin)
	assert.Equal(t, `C:\Setup\c d.ps1`, rows[2].Destination)
	assert.Equal(t, 4, rows[2].Line)
}

func TestLoadCSVWithBOMAndExtraColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "m.csv",
		"\xEF\xBB\xBFNote,FileDestination,FileOrigin\n"+
			"first,C:\\x.cmd,x.cmd\n")

	rows, err := mapping.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x.cmd", rows[0].Origin)
	assert.Equal(t, `C:\x.cmd`, rows[0].Destination)
}

func TestLoadCSVLineNumbers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m.csv",
		"FileOrigin,FileDestination\n"+
			"a.ps1,C:\\a.ps1\n"+
			"\n"+
			"\"multi\nline.ps1\",C:\\m.ps1\n"+
			"b.ps1,\n")

	rows, err := mapping.Parse(mustRead(t, path), mapping.FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 6")
	assert.Nil(t, rows)

	require.NoError(t, os.WriteFile(path, []byte(
		"FileOrigin,FileDestination\n"+
			"a.ps1,C:\\a.ps1\n"+
			"\n"+
			"\"multi\nline.ps1\",C:\\m.ps1\n"+
			"b.ps1,C:\\b.ps1\n"), 0o644))
	rows, err = mapping.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "multi\nline.ps1", rows[1].Origin)
	assert.Equal(t, 6, rows[2].Line)
}

func TestLoadCSVLeavesGocsvSettings(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m.csv", "Source,FileDestination\na,b\n")
	_, err := mapping.Load(path)
	require.Error(t, err)
	assert.False(t, gocsv.FailIfUnmatchedStructTags)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeFile(t, t.TempDir(), "m.csv", "FileOrigin,FileDestination\n")

	rows, err := mapping.Load(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := mapping.Load(filepath.Join(t.TempDir(), "file_mapping.csv"))
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("missing column", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "m.csv", "Source,FileDestination\na,b\n")
		_, err := mapping.Load(path)
		require.Error(t, err)
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "csv", pe.Format)
		assert.Equal(t, path, pe.File)
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "m.csv", "")
		_, err := mapping.Load(path)
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, path, pe.File)
	})

	t.Run("empty destination", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "m.csv", "FileOrigin,FileDestination\na.ps1,\n")
		_, err := mapping.Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "m.yaml", "- origin: [unclosed\n")
		_, err := mapping.Load(path)
		require.Error(t, err)
		var pe *errors.ParseError
		assert.ErrorAs(t, err, &pe)
	})
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "file_mapping.yaml", `
- origin: scripts/one.ps1
  destination: 'C:\Windows\Setup\Scripts\one.ps1'
- origin: scripts/two.ps1
  destination: 'C:\Windows\Setup\Scripts\two.ps1'
`)

	rows, err := mapping.Load(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "scripts/one.ps1", rows[0].Origin)
	assert.Equal(t, `C:\Windows\Setup\Scripts\two.ps1`, rows[1].Destination)
	assert.Equal(t, 2, rows[1].Line)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, mapping.FormatCSV, mapping.DetectFormat("file_mapping.csv"))
	assert.Equal(t, mapping.FormatCSV, mapping.DetectFormat("table.txt"))
	assert.Equal(t, mapping.FormatYAML, mapping.DetectFormat("map.YML"))
	assert.Equal(t, mapping.FormatYAML, mapping.DetectFormat("map.yaml"))
}

func TestResolve(t *testing.T) {
	rows := []mapping.Row{
		{Origin: "scripts/a.ps1", Destination: `C:\a.ps1`},
		{Origin: "/abs/b.ps1", Destination: `C:\b.ps1`},
	}

	resolved := mapping.Resolve(rows, "/base")
	assert.Equal(t, filepath.Join("/base", "scripts/a.ps1"), resolved[0].Origin)
	assert.Equal(t, "/abs/b.ps1", resolved[1].Origin)
	assert.Equal(t, `C:\a.ps1`, resolved[0].Destination)

	// input is not modified
	assert.Equal(t, "scripts/a.ps1", rows[0].Origin)

	unchanged := mapping.Resolve(rows, "")
	assert.Equal(t, "scripts/a.ps1", unchanged[0].Origin)
}
