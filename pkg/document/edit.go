package document

import (
	"strings"

	"github.com/beevik/etree"
)

const cdataEnd = "]]>"

// SplitCData splits text into pieces that can each be written as a CDATA
// section. A CDATA section cannot contain "]]>", so every occurrence is cut
// between "]]" and ">". Adjacent sections concatenate back to text.
func SplitCData(text string) []string {
	parts := strings.Split(text, cdataEnd)
	if len(parts) == 1 {
		return parts
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = ">" + p
		}
		if i < len(parts)-1 {
			p += "]]"
		}
		out[i] = p
	}
	return out
}

// SetLiteralText replaces the character data of e with text written as
// CDATA, so markup characters in text are kept as is.
func SetLiteralText(e *etree.Element, text string) {
	for i := len(e.Child) - 1; i >= 0; i-- {
		if _, ok := e.Child[i].(*etree.CharData); ok {
			e.RemoveChildAt(i)
		}
	}
	for _, piece := range SplitCData(text) {
		e.CreateCData(piece)
	}
}

// LiteralText returns the concatenated character data directly under e,
// CDATA and plain text alike.
func LiteralText(e *etree.Element) string {
	var sb strings.Builder
	for _, c := range e.Child {
		if cd, ok := c.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// RemoveChildElements removes the child elements of e for which match
// returns true and reports how many were removed.
func RemoveChildElements(e *etree.Element, match func(*etree.Element) bool) int {
	removed := 0
	for i := len(e.Child) - 1; i >= 0; i-- {
		if child, ok := e.Child[i].(*etree.Element); ok && match(child) {
			e.RemoveChildAt(i)
			removed++
		}
	}
	return removed
}

// PrependComment inserts a comment as the first node under e. When e starts
// with indentation, the indentation is repeated in front of the comment.
func PrependComment(e *etree.Element, text string) *etree.Comment {
	indent := ""
	if len(e.Child) > 0 {
		if cd, ok := e.Child[0].(*etree.CharData); ok && isIndent(cd) {
			indent = cd.Data
		}
	}

	comment := etree.NewComment(" " + strings.TrimSpace(text) + " ")
	e.InsertChildAt(0, comment)
	if indent != "" {
		e.InsertChildAt(0, etree.NewText(indent))
	}
	return comment
}

// RemoveComments removes comments directly under e whose trimmed text equals
// text, together with the indentation in front of each.
func RemoveComments(e *etree.Element, text string) int {
	want := strings.TrimSpace(text)
	removed := 0
	for i := len(e.Child) - 1; i >= 0; i-- {
		c, ok := e.Child[i].(*etree.Comment)
		if !ok || strings.TrimSpace(c.Data) != want {
			continue
		}
		e.RemoveChildAt(i)
		if i > 0 {
			if cd, ok := e.Child[i-1].(*etree.CharData); ok && isIndent(cd) {
				e.RemoveChildAt(i - 1)
				i--
			}
		}
		removed++
	}
	return removed
}

// Reindent lays out the children of e one per line, one unit deeper than
// the indentation in front of e. Existing indentation is discarded;
// non-blank text and CDATA are kept.
func Reindent(e *etree.Element, unit string) {
	outer := indentOf(e)
	inner := outer + unit

	var kept []etree.Token
	for _, c := range e.Child {
		if cd, ok := c.(*etree.CharData); ok && isIndent(cd) {
			continue
		}
		kept = append(kept, c)
	}

	for len(e.Child) > 0 {
		e.RemoveChildAt(len(e.Child) - 1)
	}
	if len(kept) == 0 {
		return
	}
	for _, c := range kept {
		e.AddChild(etree.NewText("\n" + inner))
		e.AddChild(c)
	}
	e.AddChild(etree.NewText("\n" + outer))
}

// indentOf returns the whitespace that precedes e on its line.
func indentOf(e *etree.Element) string {
	parent := e.Parent()
	if parent == nil {
		return ""
	}
	i := e.Index()
	if i <= 0 || i > len(parent.Child) {
		return ""
	}
	cd, ok := parent.Child[i-1].(*etree.CharData)
	if !ok || !isIndent(cd) {
		return ""
	}
	if nl := strings.LastIndexByte(cd.Data, '\n'); nl >= 0 {
		return cd.Data[nl+1:]
	}
	return ""
}

// isIndent reports whether cd is whitespace-only plain text.
func isIndent(cd *etree.CharData) bool {
	return !cd.IsCData() && strings.TrimSpace(cd.Data) == ""
}
