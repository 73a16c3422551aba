package document

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/agentstation/unattend/pkg/errors"
)

// compile translates a query into an etree path:
//
//	query := ["/" | "//"] name { ("/" | "//") name }
//	name  := [prefix ":"] (local | "*") | "*"
//
// Each name test becomes local-name() and namespace-uri() filters, so a
// prefix resolves through the namespace table and not through the prefixes
// the file happens to use.
func compile(text string, namespaces map[string]string) (etree.Path, error) {
	rest := strings.TrimSpace(text)
	if rest == "" {
		return etree.Path{}, invalidQuery(text, "empty query")
	}

	var b strings.Builder
	switch {
	case strings.HasPrefix(rest, "//"):
		b.WriteString("//")
		rest = rest[2:]
	case strings.HasPrefix(rest, "/"):
		b.WriteString("/")
		rest = rest[1:]
	}

	names := strings.Split(rest, "/")
	for i, name := range names {
		if i > 0 {
			b.WriteByte('/')
		}
		if name == "" {
			// An empty name is the middle of "//"; it may not start or end
			// the query or follow another empty name.
			if i == 0 || i == len(names)-1 || names[i-1] == "" {
				return etree.Path{}, invalidQuery(text, "empty step")
			}
			continue
		}
		test, err := nameTest(text, name, namespaces)
		if err != nil {
			return etree.Path{}, err
		}
		b.WriteString(test)
	}

	path, err := etree.CompilePath(b.String())
	if err != nil {
		return etree.Path{}, invalidQuery(text, err.Error())
	}
	return path, nil
}

func nameTest(text, name string, namespaces map[string]string) (string, error) {
	if name == "*" {
		return "*", nil
	}

	local, uri := name, ""
	if prefix, l, found := strings.Cut(name, ":"); found {
		if prefix == "" || l == "" || strings.Contains(l, ":") {
			return "", invalidQuery(text, fmt.Sprintf("bad name %q", name))
		}
		var ok bool
		if uri, ok = namespaces[prefix]; !ok {
			return "", invalidQuery(text, fmt.Sprintf("unbound prefix %q", prefix))
		}
		local = l
	}
	if strings.ContainsAny(local, "[]='\"@() \t") {
		return "", invalidQuery(text, fmt.Sprintf("bad name %q", name))
	}

	ns, err := literal(uri)
	if err != nil {
		return "", invalidQuery(text, fmt.Sprintf("namespace %q: %v", uri, err))
	}
	if local == "*" {
		return "*[namespace-uri()=" + ns + "]", nil
	}
	return "*[local-name()='" + local + "'][namespace-uri()=" + ns + "]", nil
}

// literal quotes s for an etree path filter.
func literal(s string) (string, error) {
	switch {
	case strings.ContainsAny(s, "[]"):
		return "", fmt.Errorf("brackets cannot be quoted")
	case !strings.Contains(s, "'"):
		return "'" + s + "'", nil
	case !strings.Contains(s, `"`):
		return `"` + s + `"`, nil
	}
	return "", fmt.Errorf("contains both quote characters")
}

func invalidQuery(text, message string) error {
	return &errors.ValidationError{Field: "query", Value: text, Message: message}
}
