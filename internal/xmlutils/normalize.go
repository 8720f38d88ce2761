package xmlutils

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNoOFXRoot is returned when the content has no <OFX> element.
var ErrNoOFXRoot = errors.New("no <OFX> root element found")

type tokenKind int

const (
	tokText tokenKind = iota
	tokOpen
	tokClose
	tokSelfClose
)

type token struct {
	kind tokenKind
	name string
	text string
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// DecodeText returns content as UTF-8. Content that is not valid UTF-8 is
// read as Windows-1252, the charset most OFX 1.x exports declare.
func DecodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
	if err != nil {
		return strings.ToValidUTF8(string(content), "�")
	}
	return string(decoded)
}

// NormalizeOFX converts an OFX document, SGML (1.x) or XML (2.x), into
// well-formed XML rooted at <OFX>. The header block is dropped, unclosed
// leaf elements are closed, attributes are discarded and character data is
// re-escaped.
func NormalizeOFX(content []byte) (string, error) {
	text := DecodeText(content)

	start := strings.Index(text, "<OFX>")
	if start < 0 {
		start = strings.Index(text, "<ofx>")
	}
	if start < 0 {
		return "", ErrNoOFXRoot
	}

	toks, err := tokenize(text[start:])
	if err != nil {
		return "", err
	}
	return render(toks), nil
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for len(s) > 0 {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			toks = append(toks, token{kind: tokText, text: s})
			break
		}
		if lt > 0 {
			toks = append(toks, token{kind: tokText, text: s[:lt]})
			s = s[lt:]
			continue
		}

		if strings.HasPrefix(s, "<!--") {
			end := strings.Index(s, "-->")
			if end < 0 {
				return nil, errors.New("unterminated comment")
			}
			s = s[end+3:]
			continue
		}

		gt := strings.IndexByte(s, '>')
		if gt < 0 {
			return nil, fmt.Errorf("unterminated tag near %q", snippet(s, 20))
		}
		inner := strings.TrimSpace(s[1:gt])
		s = s[gt+1:]

		switch {
		case inner == "", strings.HasPrefix(inner, "?"), strings.HasPrefix(inner, "!"):
		case strings.HasPrefix(inner, "/"):
			toks = append(toks, token{kind: tokClose, name: tagName(inner[1:])})
		case strings.HasSuffix(inner, "/"):
			toks = append(toks, token{kind: tokSelfClose, name: tagName(inner[:len(inner)-1])})
		default:
			toks = append(toks, token{kind: tokOpen, name: tagName(inner)})
		}
	}
	return toks, nil
}

func tagName(inner string) string {
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func render(toks []token) string {
	var out strings.Builder
	var stack []string

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.kind {
		case tokOpen:
			if t.name == "" {
				continue
			}
			j := i + 1
			value := ""
			if j < len(toks) && toks[j].kind == tokText {
				value = strings.TrimSpace(toks[j].text)
				j++
			}
			closedNext := j < len(toks) && toks[j].kind == tokClose && toks[j].name == t.name

			isRoot := i == 0
			if !isRoot && (value != "" || closedNext || !closeAhead(toks, j, t.name, stack)) {
				writeLeaf(&out, t.name, value)
				if closedNext {
					j++
				}
				i = j - 1
				continue
			}

			out.WriteString("<" + t.name + ">")
			stack = append(stack, t.name)
			i = j - 1

		case tokClose:
			idx := lastIndex(stack, t.name)
			if idx < 0 {
				continue
			}
			for k := len(stack) - 1; k >= idx; k-- {
				out.WriteString("</" + stack[k] + ">")
			}
			stack = stack[:idx]

		case tokSelfClose:
			if t.name != "" {
				out.WriteString("<" + t.name + "/>")
			}
		}
	}

	for k := len(stack) - 1; k >= 0; k-- {
		out.WriteString("</" + stack[k] + ">")
	}
	return out.String()
}

// closeAhead reports whether a closing tag for name appears before any
// closing tag of an element already open.
func closeAhead(toks []token, from int, name string, stack []string) bool {
	for k := from; k < len(toks); k++ {
		if toks[k].kind != tokClose {
			continue
		}
		if toks[k].name == name {
			return true
		}
		if lastIndex(stack, toks[k].name) >= 0 {
			return false
		}
	}
	return false
}

func writeLeaf(out *strings.Builder, name, value string) {
	out.WriteString("<" + name + ">")
	out.WriteString(textEscaper.Replace(html.UnescapeString(value)))
	out.WriteString("</" + name + ">")
}

func lastIndex(stack []string, name string) int {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return i
		}
	}
	return -1
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
