// Package save writes serialized output to a writer or a file. File writes
// are atomic by default: content goes to a temporary file next to the target
// and is renamed over it only once fully written, so a failed run never
// leaves a truncated answer file behind.
package save

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/unattend/pkg/errors"
)

// Write serializes src according to opts.
func Write(src io.WriterTo, opts ...Option) error {
	options := Defaults().Apply(opts...)

	if w := options.Writer(); w != nil {
		if _, err := src.WriteTo(w); err != nil {
			return errors.WrapIO("write", "", err)
		}
		return nil
	}

	path := options.Path()
	if path == "" {
		return &errors.ValidationError{Field: "path", Message: "no output path or writer"}
	}
	if options.Atomic() {
		return writeAtomic(path, src, options)
	}
	return writeOverwrite(path, src, options)
}

func writeOverwrite(path string, src io.WriterTo, options Options) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, options.Perm()) //nolint:gosec // output path from config
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := src.WriteTo(bw); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := bw.Flush(); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

func writeAtomic(path string, src io.WriterTo, options Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpPath := tmp.Name()

	fail := func(op string, err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return errors.WrapIO(op, path, err)
	}

	if err := tmp.Chmod(options.Perm()); err != nil {
		return fail("chmod", err)
	}

	bw := bufio.NewWriter(tmp)
	if _, err := src.WriteTo(bw); err != nil {
		return fail("write", err)
	}
	if err := bw.Flush(); err != nil {
		return fail("write", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("close", path, err)
	}

	// os.Rename replaces an existing file on Windows as well.
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
