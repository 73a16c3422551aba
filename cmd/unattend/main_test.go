package main

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainProcessEnv = "UNATTEND_MAIN_PROCESS"

// TestMainProcess runs main when the test binary is started by runMain.
func TestMainProcess(t *testing.T) {
	if os.Getenv(mainProcessEnv) != "1" {
		t.Skip("only runs as a child process")
	}
	os.Args = []string{"unattend"}
	main()
}

// runMain runs the binary in dir with the default file names and returns the
// exit status and combined output.
func runMain(t *testing.T, dir string) (int, string) {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)

	cmd := exec.Command(exe, "-test.run=^TestMainProcess$")
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), mainProcessEnv+"=1", "HOME="+dir, "LOG_FORMAT=json")
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), string(out)
	}
	require.NoError(t, err, string(out))
	return 0, string(out)
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestExitStatus(t *testing.T) {
	if testing.Short() {
		t.Skip("starts child processes")
	}

	const template = `<unattend xmlns="urn:schemas-microsoft-com:unattend"><Extensions/></unattend>`

	tests := []struct {
		name   string
		files  map[string]string
		status int
		output bool
		says   string
	}{
		{
			name: "skipped row still succeeds",
			files: map[string]string{
				"autounattend_template.xml": template,
				"file_mapping.csv":          "FileOrigin,FileDestination\nmissing.ps1,C:\\missing.ps1\n",
			},
			status: 0,
			output: true,
			says:   "Source file not found",
		},
		{
			name: "missing template",
			files: map[string]string{
				"file_mapping.csv": "FileOrigin,FileDestination\n",
			},
			status: 1,
			says:   "autounattend_template.xml",
		},
		{
			name: "missing anchor",
			files: map[string]string{
				"autounattend_template.xml": `<unattend xmlns="urn:schemas-microsoft-com:unattend"/>`,
				"file_mapping.csv":          "FileOrigin,FileDestination\n",
			},
			status: 1,
			says:   "Extensions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)

			status, out := runMain(t, dir)
			assert.Equal(t, tt.status, status, out)
			assert.Contains(t, out, tt.says)

			_, err := os.Stat(filepath.Join(dir, "autounattend.xml"))
			assert.Equal(t, tt.output, err == nil, "output file presence")
		})
	}
}
