package document_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/unattend/pkg/document"
	"github.com/agentstation/unattend/pkg/errors"
)

const ns = "urn:schemas-microsoft-com:unattend"

const sample = `<?xml version="1.0" encoding="utf-8"?>
<unattend xmlns="urn:schemas-microsoft-com:unattend" xmlns:wcm="http://schemas.microsoft.com/WMIConfig/2002/State">
  <settings pass="specialize">
    <component name="Microsoft-Windows-Deployment" wcm:action="add"/>
  </settings>
  <Extensions>
    <ExtractScript>echo</ExtractScript>
    <File path="C:\old.ps1"><![CDATA[old]]></File>
  </Extensions>
  <Other xmlns="urn:other">
    <Extensions/>
  </Other>
</unattend>
`

func parse(t *testing.T, text string) *document.Document {
	t.Helper()
	doc, err := document.Parse([]byte(text))
	require.NoError(t, err)
	doc.RegisterNamespace("u", doc.DefaultNamespace())
	return doc
}

func TestLoad(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "t.xml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

		doc, err := document.Load(path)
		require.NoError(t, err)
		assert.Equal(t, path, doc.Path())
		assert.Equal(t, "unattend", doc.Root().Tag)
		assert.Equal(t, ns, doc.DefaultNamespace())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := document.Load(filepath.Join(t.TempDir(), "absent.xml"))
		require.Error(t, err)
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("not xml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "t.xml")
		require.NoError(t, os.WriteFile(path, []byte("<unattend><oops></unattend>"), 0o644))

		_, err := document.Load(path)
		require.Error(t, err)
		assert.True(t, errors.IsMalformedTemplate(err))
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, path, pe.File)
	})

	t.Run("no root", func(t *testing.T) {
		_, err := document.Parse([]byte(`<?xml version="1.0"?>`))
		require.Error(t, err)
		assert.True(t, errors.IsMalformedTemplate(err))
	})
}

func TestFind(t *testing.T) {
	doc := parse(t, sample)

	tests := []struct {
		name  string
		query string
		count int
		tag   string
	}{
		{"absolute root", "/u:unattend", 1, "unattend"},
		{"descendant container in namespace", "//u:Extensions", 1, "Extensions"},
		{"child path", "/u:unattend/u:Extensions/u:File", 1, "File"},
		{"descendant below child", "/u:unattend//u:component", 1, "component"},
		{"wildcard in namespace", "/u:unattend/u:*", 2, "settings"},
		{"wildcard any namespace", "/u:unattend/*", 3, "settings"},
		{"unprefixed means no namespace", "//Extensions", 0, ""},
		{"relative from document node", "u:unattend", 1, "unattend"},
		{"wrong root", "/u:settings", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			all, err := doc.FindAll(tt.query)
			require.NoError(t, err)
			assert.Len(t, all, tt.count)

			one, err := doc.FindOne(tt.query)
			require.NoError(t, err)
			if tt.count == 0 {
				assert.Nil(t, one)
				return
			}
			require.NotNil(t, one)
			assert.Equal(t, tt.tag, one.Tag)
		})
	}
}

func TestFindOtherNamespace(t *testing.T) {
	doc := parse(t, sample)
	doc.RegisterNamespace("o", "urn:other")

	matches, err := doc.FindAll("//o:Extensions")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "urn:other", matches[0].NamespaceURI())

	uri, ok := doc.Namespace("o")
	assert.True(t, ok)
	assert.Equal(t, "urn:other", uri)
}

func TestFindOverlappingDescendants(t *testing.T) {
	doc := parse(t, sample)

	// both the root and the container are ancestors of the entry
	files, err := doc.FindAll("//u:unattend//u:File")
	require.NoError(t, err)
	assert.Len(t, files, 1)

	all, err := doc.FindAll("//*")
	require.NoError(t, err)
	assert.Len(t, all, 8)
}

func TestFindQuotedNamespace(t *testing.T) {
	doc := parse(t, `<unattend xmlns="urn:it's"><Extensions/></unattend>`)

	matches, err := doc.FindAll("//u:Extensions")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFindNoNamespace(t *testing.T) {
	doc := parse(t, `<unattend><Extensions/></unattend>`)
	assert.Equal(t, "", doc.DefaultNamespace())

	bound, err := doc.FindAll("//u:Extensions")
	require.NoError(t, err)
	assert.Len(t, bound, 1)

	plain, err := doc.FindAll("/unattend/Extensions")
	require.NoError(t, err)
	assert.Len(t, plain, 1)
}

func TestQueryErrors(t *testing.T) {
	doc := parse(t, sample)

	doc.RegisterNamespace("b", "urn:[bad]")

	for _, q := range []string{"", "//", "/u:", "x:unattend", "/u:a//", "u::b", "/u:a///u:b", "//u:a[1]", "//b:Extensions"} {
		t.Run(q, func(t *testing.T) {
			_, err := doc.FindAll(q)
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestPrefixedElementNamespace(t *testing.T) {
	doc := parse(t, `<u:unattend xmlns:u="urn:schemas-microsoft-com:unattend"><u:Extensions/></u:unattend>`)
	assert.Equal(t, ns, doc.Root().NamespaceURI())

	// no default namespace declared; bind the prefix explicitly
	doc.RegisterNamespace("x", ns)
	matches, err := doc.FindAll("//x:Extensions")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestBytesRoundTrip(t *testing.T) {
	doc := parse(t, sample)
	out, err := doc.Bytes()
	require.NoError(t, err)

	text := string(out)
	assert.True(t, strings.HasPrefix(text, `<?xml version="1.0" encoding="utf-8"?>`))
	assert.Contains(t, text, `wcm:action="add"`)
	assert.Contains(t, text, `<![CDATA[old]]>`)
}
