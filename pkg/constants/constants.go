// Package constants provides shared constants used throughout the unattend codebase.
// This includes default file locations, schema names, file permissions and other
// values that should be consistent across the library and the CLI.
package constants

// Default file locations, resolved relative to the current working directory.
const (
	// DefaultTemplatePath is the answer file template read on every run.
	DefaultTemplatePath = "autounattend_template.xml"

	// DefaultMappingPath is the table of origin to destination paths.
	DefaultMappingPath = "file_mapping.csv"

	// DefaultOutputPath is the generated answer file.
	DefaultOutputPath = "autounattend.xml"
)

// Schema constants describe the anchors the reconciler looks for.
const (
	// UnattendNamespace is the default namespace of a Windows answer file.
	UnattendNamespace = "urn:schemas-microsoft-com:unattend"

	// RootElement is the local name of the document root.
	RootElement = "unattend"

	// ContainerElement is the local name of the entries container.
	ContainerElement = "Extensions"

	// EntryElement is the local name of an embedded file entry.
	EntryElement = "File"

	// PathAttribute holds the destination path of an entry.
	PathAttribute = "path"

	// NamespacePrefix is the prefix bound to the root namespace in queries.
	NamespacePrefix = "u"
)

// Mapping table column names.
const (
	// OriginColumn names the column holding the local source path.
	OriginColumn = "FileOrigin"

	// DestinationColumn names the column holding the destination path.
	DestinationColumn = "FileDestination"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Formatting constants.
const (
	// DefaultIndent is one level of indentation used when laying out entries.
	DefaultIndent = "  "

	// ProvenanceComment marks a document as machine generated.
	ProvenanceComment = "This file was generated by unattend from a template and a file mapping. Manual edits will be overwritten."
)
