// Package textfile reads provisioning scripts as text.
//
// Scripts authored on Windows arrive as UTF-8 (with or without a byte order
// mark), UTF-16 with a byte order mark, or in the legacy Windows-1252 code
// page. Read returns the content as UTF-8 so it can be embedded in a UTF-8
// answer file. Valid UTF-8 without a BOM is returned byte for byte.
package textfile

import (
	"bytes"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/agentstation/unattend/pkg/errors"
)

// Encoding names the encoding a file was decoded from.
type Encoding string

// Supported encodings.
const (
	UTF8        Encoding = "utf-8"
	UTF8BOM     Encoding = "utf-8-bom"
	UTF16LE     Encoding = "utf-16le"
	UTF16BE     Encoding = "utf-16be"
	Windows1252 Encoding = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Text is a decoded file.
type Text struct {
	Content  string
	Encoding Encoding
	Size     int // size on disk in bytes
}

// Read loads path and decodes it to UTF-8.
func Read(path string) (*Text, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the mapping table
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	content, enc, err := Decode(data)
	if err != nil {
		return nil, errors.WrapParse(string(enc), path, err)
	}

	return &Text{Content: content, Encoding: enc, Size: len(data)}, nil
}

// Decode detects the encoding of data and converts it to UTF-8.
func Decode(data []byte) (string, Encoding, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return string(data[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(data, bomUTF16LE):
		s, err := decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data)
		return s, UTF16LE, err
	case bytes.HasPrefix(data, bomUTF16BE):
		s, err := decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data)
		return s, UTF16BE, err
	case utf8.Valid(data):
		return string(data), UTF8, nil
	default:
		s, err := decodeWith(charmap.Windows1252, data)
		return s, Windows1252, err
	}
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, bomUTF8)
}
