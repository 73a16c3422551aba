package save

import (
	"io"
	"io/fs"

	"github.com/agentstation/unattend/pkg/constants"
)

// Options is the configuration for save.
type Options struct {
	path   string
	writer io.Writer
	atomic bool
	perm   fs.FileMode
}

// Path returns the path for the save options.
func (s *Options) Path() string {
	return s.path
}

// Writer returns the writer for the save options.
func (s *Options) Writer() io.Writer {
	return s.writer
}

// Atomic reports whether file saves go through a temporary file.
func (s *Options) Atomic() bool {
	return s.atomic
}

// Perm returns the permissions for created files.
func (s *Options) Perm() fs.FileMode {
	return s.perm
}

// Defaults returns the default save options.
func Defaults() *Options {
	return &Options{
		atomic: true,
		perm:   constants.FilePermissions,
	}
}

// Apply applies the given options to the save options.
func (s *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(s)
	}
	return *s
}

// Option is a function that configures save options.
type Option func(*Options)

// WithPath for filesystem saves.
func WithPath(path string) Option {
	return func(s *Options) {
		s.path = path
	}
}

// WithWriter for custom outputs. A writer takes precedence over a path.
func WithWriter(w io.Writer) Option {
	return func(s *Options) {
		s.writer = w
	}
}

// WithAtomic toggles writing through a temporary file and a rename.
func WithAtomic(enabled bool) Option {
	return func(s *Options) {
		s.atomic = enabled
	}
}

// WithPerm sets the permissions of a created file.
func WithPerm(perm fs.FileMode) Option {
	return func(s *Options) {
		s.perm = perm
	}
}
