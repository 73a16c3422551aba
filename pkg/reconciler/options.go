package reconciler

import (
	"strings"

	"github.com/agentstation/unattend/pkg/constants"
	"github.com/agentstation/unattend/pkg/errors"
	"github.com/agentstation/unattend/pkg/provenance"
)

// Options configures a reconciler.
type options struct {
	namespace    string // required namespace of the root; empty binds to the template's
	rootElement  string
	container    string
	entryElement string
	pathAttr     string
	indent       string
	comment      string
	dryRun       bool
	tracking     bool
}

func defaultOptions() *options {
	return &options{
		rootElement:  constants.RootElement,
		container:    constants.ContainerElement,
		entryElement: constants.EntryElement,
		pathAttr:     constants.PathAttribute,
		indent:       constants.DefaultIndent,
		comment:      provenance.DefaultComment,
		tracking:     true,
	}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (options *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithDryRun marks the run as a dry run. The document is still reconciled in
// memory; callers use Result.Metadata.DryRun to skip writing it.
func WithDryRun(enabled bool) Option {
	return func(o *options) error {
		o.dryRun = enabled
		return nil
	}
}

// WithNamespace requires the root element and the container to be in uri.
// By default the anchors are looked up in whatever namespace the template's
// root element declares.
func WithNamespace(uri string) Option {
	return func(o *options) error {
		o.namespace = strings.TrimSpace(uri)
		return nil
	}
}

// WithEntryElement sets the local name of entry elements.
func WithEntryElement(name string) Option {
	return func(o *options) error {
		if err := validName("entry_element", name); err != nil {
			return err
		}
		o.entryElement = name
		return nil
	}
}

// WithPathAttribute sets the attribute that carries the destination path.
func WithPathAttribute(name string) Option {
	return func(o *options) error {
		if err := validName("path_attribute", name); err != nil {
			return err
		}
		o.pathAttr = name
		return nil
	}
}

// WithContainer sets the local name of the entries container.
func WithContainer(name string) Option {
	return func(o *options) error {
		if err := validName("container", name); err != nil {
			return err
		}
		o.container = name
		return nil
	}
}

// WithIndent sets the indentation unit used when laying out the container.
func WithIndent(unit string) Option {
	return func(o *options) error {
		if strings.Trim(unit, " \t") != "" {
			return &errors.ValidationError{
				Field:   "indent",
				Value:   unit,
				Message: "must contain only spaces and tabs",
			}
		}
		o.indent = unit
		return nil
	}
}

// WithComment sets the provenance comment text.
func WithComment(text string) Option {
	return func(o *options) error {
		if err := provenance.ValidateComment(text); err != nil {
			return err
		}
		o.comment = strings.TrimSpace(text)
		return nil
	}
}

// WithProvenance enables per-row provenance records.
func WithProvenance(enabled bool) Option {
	return func(o *options) error {
		o.tracking = enabled
		return nil
	}
}

func validName(field, name string) error {
	if name == "" || strings.ContainsAny(name, " \t\r\n:/<>&\"'") {
		return &errors.ValidationError{
			Field:   field,
			Value:   name,
			Message: "must be a non-empty XML local name",
		}
	}
	return nil
}
