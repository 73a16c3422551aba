// Package document wraps an XML tree with the handful of operations the
// reconciler needs: namespace-aware queries, literal text bodies, comments
// and predictable indentation.
//
// Queries use a small XPath subset, resolved against a namespace table and
// evaluated as etree paths:
//
//	doc.RegisterNamespace("u", "urn:schemas-microsoft-com:unattend")
//	root, _ := doc.FindOne("/u:unattend")
//	containers, _ := doc.FindAll("//u:Extensions")
//
// As in XPath, an unprefixed name only matches elements in no namespace.
package document

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	"github.com/beevik/etree"

	"github.com/agentstation/unattend/pkg/errors"
)

// Document is a parsed, mutable XML tree plus a namespace table for queries.
type Document struct {
	tree       *etree.Document
	path       string
	namespaces map[string]string
}

// Load parses the XML file at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user supplied input path
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewNotFoundError("template", path)
		}
		return nil, errors.WrapIO("read", path, err)
	}

	doc, err := Parse(data)
	if err != nil {
		var pe *errors.ParseError
		if stderrors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	doc.path = path
	return doc, nil
}

// Parse reads a document from memory.
func Parse(data []byte) (*Document, error) {
	tree := etree.NewDocument()
	tree.ReadSettings.PreserveCData = true

	if err := tree.ReadFromBytes(data); err != nil {
		return nil, errors.NewParseError("xml", "", err.Error(), err)
	}
	if tree.Root() == nil {
		return nil, errors.NewParseError("xml", "", "document has no root element", nil)
	}

	return &Document{
		tree:       tree,
		namespaces: make(map[string]string),
	}, nil
}

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string {
	return d.path
}

// Root returns the top-level element.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// DefaultNamespace returns the namespace the root element is declared in.
func (d *Document) DefaultNamespace() string {
	return d.Root().NamespaceURI()
}

// RegisterNamespace binds prefix to uri for subsequent queries.
func (d *Document) RegisterNamespace(prefix, uri string) {
	d.namespaces[prefix] = uri
}

// Namespace returns the URI bound to prefix.
func (d *Document) Namespace(prefix string) (string, bool) {
	uri, ok := d.namespaces[prefix]
	return uri, ok
}

// FindAll returns every element matched by query, without duplicates.
// Relative queries are evaluated from the document node.
func (d *Document) FindAll(query string) ([]*etree.Element, error) {
	path, err := compile(query, d.namespaces)
	if err != nil {
		return nil, err
	}
	return d.tree.FindElementsPath(path), nil
}

// FindOne returns the first element matched by query, or nil.
func (d *Document) FindOne(query string) (*etree.Element, error) {
	matches, err := d.FindAll(query)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

// WriteTo serializes the document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.tree.WriteTo(w)
}

// Bytes serializes the document into memory.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
